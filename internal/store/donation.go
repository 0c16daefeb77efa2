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

const donationTableName = "donations"

var donationColumns = utils.StructTagValues(types.Donation{})

type DonationRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRepository(pool *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{pool: pool}
}

func (r *DonationRepository) Donation(ctx context.Context, donationID string) (*types.Donation, error) {
	query, args, err := psql().
		Select(donationColumns...).
		From(donationTableName).
		Where(sq.Eq{"id": donationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donation query: %w", err)
	}

	var donation types.Donation
	err = pgxscan.Get(ctx, r.pool, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to fetch donation: %w", err)
	}

	return &donation, nil
}

// DonationsByDonor returns a donor's full history, newest first.
func (r *DonationRepository) DonationsByDonor(ctx context.Context, donorID string) ([]*types.Donation, error) {
	query, args, err := psql().
		Select(donationColumns...).
		From(donationTableName).
		Where(sq.Eq{"donor_id": donorID}).
		OrderBy("donation_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donations by donor query: %w", err)
	}

	donations := make([]*types.Donation, 0)
	err = pgxscan.Select(ctx, r.pool, &donations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donations for donor %s: %w", donorID, err)
	}

	return donations, nil
}

func (r *DonationRepository) CreateDonation(ctx context.Context, donation *types.Donation) error {
	donation.ID = utils.NanoID()
	donation.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(donationTableName).
		SetMap(utils.StructToMap(donation)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert donation query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create donation")
}

func (r *DonationRepository) UpdateStatus(ctx context.Context, donationID, donorID string, status types.DonationStatus) error {
	query, args, err := psql().
		Update(donationTableName).
		Set("status", status).
		Where(sq.Eq{"id": donationID, "donor_id": donorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate update donation status query for donation %s: %w", donationID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update donation status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrDonationNotFound
	}

	return nil
}

func (r *DonationRepository) DeleteDonation(ctx context.Context, donationID, donorID string) error {
	query, args, err := psql().
		Delete(donationTableName).
		Where(sq.Eq{"id": donationID, "donor_id": donorID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete donation query for donation %s: %w", donationID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete donation: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrDonationNotFound
	}

	return nil
}

// DonorsWithDonationsBetween lists donors holding at least one donation dated
// within [from, to]. With completedOnlyFilter the scan skips scheduled and
// cancelled rows.
func (r *DonationRepository) DonorsWithDonationsBetween(ctx context.Context, from, to time.Time, completedOnlyFilter bool) ([]string, error) {
	where := sq.And{
		sq.GtOrEq{"donation_date": from},
		sq.LtOrEq{"donation_date": to},
	}
	if completedOnlyFilter {
		where = append(where, completedOnly)
	}

	query, args, err := psql().
		Select("donor_id").
		Distinct().
		From(donationTableName).
		Where(where).
		OrderBy("donor_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donors in window query: %w", err)
	}

	donorIDs := make([]string, 0)
	err = pgxscan.Select(ctx, r.pool, &donorIDs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donors in window: %w", err)
	}

	return donorIDs, nil
}
