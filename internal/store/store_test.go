package store

import (
	"testing"

	"bleedforlife/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletedOnly(t *testing.T) {
	query, args, err := psql().Select("id").From(donationTableName).Where(completedOnly).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM donations WHERE (status IS NULL OR status = $1)", query)
	assert.Equal(t, []any{"completed"}, args)
}

func TestColumnsFollowDBTags(t *testing.T) {
	assert.Contains(t, donationColumns, "donation_date")
	assert.Contains(t, donationColumns, "units_donated")
	assert.Contains(t, profileColumns, "is_available_donor")
	assert.Contains(t, bloodRequestColumns, "urgency_level")
	assert.Contains(t, notificationColumns, "is_read")
	assert.Len(t, donationColumns, 9)
}

func TestBloodRequestFilterQuery(t *testing.T) {
	filter := BloodRequestFilter{
		Urgency:    types.UrgencyCritical,
		BloodTypes: []types.BloodType{types.BloodTypeAPos, types.BloodTypeABPos},
	}

	// Mirrors the where clause OpenRequests assembles.
	query, args, err := psql().Select("id").From(bloodRequestTableName).Where(openRequestsWhere(filter)).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM blood_requests WHERE ((status IS NULL OR status = $1) AND urgency_level = $2 AND blood_type IN ($3,$4))", query)
	assert.Equal(t, []any{types.BloodRequestStatusOpen, types.UrgencyCritical, "A+", "AB+"}, args)
}
