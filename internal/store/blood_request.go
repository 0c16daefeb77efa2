package store

import (
	"context"
	"fmt"
	"time"

	"bleedforlife/internal/utils"
	"bleedforlife/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bloodRequestTableName = "blood_requests"

var bloodRequestColumns = utils.StructTagValues(types.BloodRequest{})

type BloodRequestFilter struct {
	Urgency    types.Urgency
	BloodTypes []types.BloodType
	Limit      uint64
}

type BloodRequestRepository struct {
	pool *pgxpool.Pool
}

func NewBloodRequestRepository(pool *pgxpool.Pool) *BloodRequestRepository {
	return &BloodRequestRepository{pool: pool}
}

func (r *BloodRequestRepository) BloodRequest(ctx context.Context, requestID string) (*types.BloodRequest, error) {
	query, args, err := psql().
		Select(bloodRequestColumns...).
		From(bloodRequestTableName).
		Where(sq.Eq{"id": requestID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate blood request query: %w", err)
	}

	var req types.BloodRequest
	err = pgxscan.Get(ctx, r.pool, &req, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrBloodRequestNotFound
		}
		return nil, fmt.Errorf("failed to fetch blood request: %w", err)
	}

	return &req, nil
}

// OpenRequests lists open requests, critical first and then newest first.
func (r *BloodRequestRepository) OpenRequests(ctx context.Context, filter BloodRequestFilter) ([]*types.BloodRequest, error) {
	builder := psql().
		Select(bloodRequestColumns...).
		From(bloodRequestTableName).
		Where(openRequestsWhere(filter)).
		OrderBy("CASE urgency_level WHEN 'Critical' THEN 0 WHEN 'High' THEN 1 ELSE 2 END", "created_at DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate open blood requests query: %w", err)
	}

	requests := make([]*types.BloodRequest, 0)
	err = pgxscan.Select(ctx, r.pool, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open blood requests: %w", err)
	}

	return requests, nil
}

func openRequestsWhere(filter BloodRequestFilter) sq.And {
	where := sq.And{sq.Or{sq.Eq{"status": nil}, sq.Eq{"status": types.BloodRequestStatusOpen}}}
	if filter.Urgency != "" {
		where = append(where, sq.Eq{"urgency_level": filter.Urgency})
	}
	if len(filter.BloodTypes) > 0 {
		values := make([]string, 0, len(filter.BloodTypes))
		for _, bt := range filter.BloodTypes {
			values = append(values, string(bt))
		}
		where = append(where, sq.Eq{"blood_type": values})
	}
	return where
}

func (r *BloodRequestRepository) Create(ctx context.Context, req *types.BloodRequest) error {
	now := time.Now()
	req.ID = utils.NanoID()
	req.CreatedAt = now
	req.UpdatedAt = now

	query, args, err := psql().
		Insert(bloodRequestTableName).
		SetMap(utils.StructToMap(req)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert blood request query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create blood request")
}

func (r *BloodRequestRepository) UpdateStatus(ctx context.Context, requestID, requesterID string, status types.BloodRequestStatus) error {
	query, args, err := psql().
		Update(bloodRequestTableName).
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": requestID, "requester_id": requesterID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update blood request status query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update blood request status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrBloodRequestNotFound
	}

	return nil
}
