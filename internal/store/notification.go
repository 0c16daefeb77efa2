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

const notificationTableName = "notifications"

var notificationColumns = utils.StructTagValues(types.Notification{})

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *types.Notification) error {
	n.ID = utils.NanoID()
	n.CreatedAt = time.Now()
	if n.IsRead == nil {
		n.IsRead = utils.BoolPtr(false)
	}

	query, args, err := psql().
		Insert(notificationTableName).
		SetMap(utils.StructToMap(n)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert notification query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create notification")
}

func (r *NotificationRepository) NotificationsByUser(ctx context.Context, userID string, limit uint64) ([]*types.Notification, error) {
	builder := psql().
		Select(notificationColumns...).
		From(notificationTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate notifications query: %w", err)
	}

	out := make([]*types.Notification, 0)
	if err := pgxscan.Select(ctx, r.pool, &out, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return out, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	query, args, err := psql().
		Select("count(*)").
		From(notificationTableName).
		Where(sq.And{sq.Eq{"user_id": userID}, sq.Or{sq.Eq{"is_read": nil}, sq.Eq{"is_read": false}}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate unread count query: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	query, args, err := psql().
		Update(notificationTableName).
		Set("is_read", true).
		Where(sq.Eq{"id": notificationID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate mark read query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrNotificationNotFound
	}

	return nil
}
