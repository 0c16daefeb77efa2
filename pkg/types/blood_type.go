package types

type BloodType string

const (
	BloodTypeAPos  BloodType = "A+"
	BloodTypeANeg  BloodType = "A-"
	BloodTypeBPos  BloodType = "B+"
	BloodTypeBNeg  BloodType = "B-"
	BloodTypeABPos BloodType = "AB+"
	BloodTypeABNeg BloodType = "AB-"
	BloodTypeOPos  BloodType = "O+"
	BloodTypeONeg  BloodType = "O-"
)

var BloodTypes = []BloodType{
	BloodTypeAPos, BloodTypeANeg,
	BloodTypeBPos, BloodTypeBNeg,
	BloodTypeABPos, BloodTypeABNeg,
	BloodTypeOPos, BloodTypeONeg,
}

func (b BloodType) Valid() bool {
	for _, bt := range BloodTypes {
		if b == bt {
			return true
		}
	}
	return false
}

// recipients lists, for each donor type, the recipient types that can
// receive red cells from it.
var recipients = map[BloodType][]BloodType{
	BloodTypeONeg:  BloodTypes,
	BloodTypeOPos:  {BloodTypeOPos, BloodTypeAPos, BloodTypeBPos, BloodTypeABPos},
	BloodTypeANeg:  {BloodTypeANeg, BloodTypeAPos, BloodTypeABNeg, BloodTypeABPos},
	BloodTypeAPos:  {BloodTypeAPos, BloodTypeABPos},
	BloodTypeBNeg:  {BloodTypeBNeg, BloodTypeBPos, BloodTypeABNeg, BloodTypeABPos},
	BloodTypeBPos:  {BloodTypeBPos, BloodTypeABPos},
	BloodTypeABNeg: {BloodTypeABNeg, BloodTypeABPos},
	BloodTypeABPos: {BloodTypeABPos},
}

// CanDonateTo reports whether a donor of type b can give to a recipient of type recipient.
func (b BloodType) CanDonateTo(recipient BloodType) bool {
	for _, r := range recipients[b] {
		if r == recipient {
			return true
		}
	}
	return false
}

// Recipients returns the recipient types a donor of type b can give to.
func (b BloodType) Recipients() []BloodType {
	return recipients[b]
}

// Donors returns the donor types that can give to a recipient of type b.
func (b BloodType) Donors() []BloodType {
	out := make([]BloodType, 0, len(BloodTypes))
	for _, donor := range BloodTypes {
		if donor.CanDonateTo(b) {
			out = append(out, donor)
		}
	}
	return out
}
