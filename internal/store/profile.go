package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bleedforlife/internal/utils"
	"bleedforlife/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileTableName = "profiles"

var profileColumns = utils.StructTagValues(types.Profile{})

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Profile(ctx context.Context, userID string) (*types.Profile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile query: %w", err)
	}

	var profile types.Profile
	err = pgxscan.Get(ctx, r.pool, &profile, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return &profile, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile *types.Profile) error {
	now := time.Now()
	if profile.ID == "" {
		profile.ID = utils.NanoID()
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now

	query, args, err := psql().
		Insert(profileTableName).
		SetMap(utils.StructToMap(profile)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create profile query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

func (r *ProfileRepository) Update(ctx context.Context, userID string, profile *types.Profile) error {
	profile.UserID = userID
	profile.UpdatedAt = time.Now()

	profileMap := utils.StructToMap(profile)
	delete(profileMap, "id")
	delete(profileMap, "created_at")

	query, args, err := psql().
		Update(profileTableName).
		SetMap(profileMap).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update profile query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return nil
}

// UpsertIdentity makes sure a profile row exists for a freshly authenticated
// user, filling names only where they are still empty.
func (r *ProfileRepository) UpsertIdentity(ctx context.Context, userID, givenName, familyName string) error {
	now := time.Now()

	var givenNamePtr *string
	if trimmed := strings.TrimSpace(givenName); trimmed != "" {
		givenNamePtr = &trimmed
	}

	var familyNamePtr *string
	if trimmed := strings.TrimSpace(familyName); trimmed != "" {
		familyNamePtr = &trimmed
	}

	query, args, err := psql().
		Insert(profileTableName).
		Columns("id", "user_id", "first_name", "last_name", "is_available_donor", "created_at", "updated_at").
		Values(utils.NanoID(), userID, givenNamePtr, familyNamePtr, true, now, now).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET first_name = COALESCE(profiles.first_name, EXCLUDED.first_name), last_name = COALESCE(profiles.last_name, EXCLUDED.last_name), updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert profile identity query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert profile identity fields: %w", err)
	}

	return nil
}

// AvailableDonors returns donors flagged available whose blood type is one of
// bloodTypes.
func (r *ProfileRepository) AvailableDonors(ctx context.Context, bloodTypes []types.BloodType) ([]*types.Profile, error) {
	if len(bloodTypes) == 0 {
		return []*types.Profile{}, nil
	}

	values := make([]string, 0, len(bloodTypes))
	for _, bt := range bloodTypes {
		values = append(values, string(bt))
	}

	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		Where(sq.Eq{"is_available_donor": true, "blood_type": values}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate available donors query: %w", err)
	}

	profiles := make([]*types.Profile, 0)
	err = pgxscan.Select(ctx, r.pool, &profiles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available donors: %w", err)
	}

	return profiles, nil
}
