package impact

import (
	"fmt"
	"strings"

	"bleedforlife/pkg/types"
)

// CountingPolicy decides which donation records feed totals, units, lives,
// tier and the cooldown. The same policy is applied to all of them.
type CountingPolicy int

const (
	// CountCompleted considers only records whose status is completed.
	// Records with no stored status are completed.
	CountCompleted CountingPolicy = iota
	// CountAll considers every record regardless of status.
	CountAll
)

func (p CountingPolicy) String() string {
	switch p {
	case CountAll:
		return "all"
	default:
		return "completed"
	}
}

func (p CountingPolicy) counts(d *types.Donation) bool {
	if p == CountAll {
		return true
	}
	return d.EffectiveStatus() == types.DonationStatusCompleted
}

// ParseCountingPolicy maps the COUNTING_POLICY setting onto a policy.
func ParseCountingPolicy(s string) (CountingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "completed":
		return CountCompleted, nil
	case "all":
		return CountAll, nil
	default:
		return CountCompleted, fmt.Errorf("unknown counting policy %q", s)
	}
}
