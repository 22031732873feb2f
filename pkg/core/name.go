package core

import "strings"

// NameRecord is a name as persisted in the record store.
// GenderCode holds the raw stored code ("M", "F", or anything else).
type NameRecord struct {
	ID         int64
	Name       string
	GenderCode string
	Allowed    int
	Notes      string
}

// IsAllowed reports whether the record is eligible for listing.
func (r NameRecord) IsAllowed() bool {
	return r.Allowed == 1
}

// ToName projects the stored record into its domain shape.
func (r NameRecord) ToName() Name {
	return Name{
		ID:     r.ID,
		Name:   r.Name,
		Gender: ParseGender(r.GenderCode),
		Notes:  r.Notes,
	}
}

// Gender is the normalized gender of a name.
type Gender int

// Gender values.
const (
	GenderUnspecified Gender = iota
	GenderMale
	GenderFemale
)

// ParseGender maps a stored gender code to a Gender, ignoring case.
// Unknown and empty codes map to GenderUnspecified.
func ParseGender(code string) Gender {
	switch strings.ToUpper(code) {
	case "M":
		return GenderMale
	case "F":
		return GenderFemale
	default:
		return GenderUnspecified
	}
}

// String returns the enumeration name (MALE, FEMALE, UNSPECIFIED).
func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "MALE"
	case GenderFemale:
		return "FEMALE"
	default:
		return "UNSPECIFIED"
	}
}

// DisplayText returns the human readable label, empty when unspecified.
func (g Gender) DisplayText() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	default:
		return ""
	}
}

// MarshalText encodes the gender by its enumeration name.
func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// Name is the read-side projection of a NameRecord handed to consumers.
// It is derived on every read and never stored.
type Name struct {
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Gender Gender `json:"gender" yaml:"gender"`
	Notes  string `json:"notes" yaml:"notes"`
}

// ToNames maps a slice of records to domain names, preserving order.
func ToNames(records []NameRecord) []Name {
	names := make([]Name, 0, len(records))
	for _, r := range records {
		names = append(names, r.ToName())
	}
	return names
}
