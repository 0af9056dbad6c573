package reader

import (
	"github.com/trezcool/mgawo/core"
)

// PreferenceType is a reader's explicit stance on a project. Absence of a
// stance means "acceptable"; that state is never stored or sent.
type PreferenceType string

const (
	PreferencePreferred    PreferenceType = "PREFERRED"
	PreferenceUnacceptable PreferenceType = "UNACCEPTABLE"
)

// ExtendedPreferenceType adds the implicit neutral state for display layers
// that need all three spelled out.
type ExtendedPreferenceType string

const (
	ExtendedAcceptable   ExtendedPreferenceType = "ACCEPTABLE"
	ExtendedPreferred    ExtendedPreferenceType = "PREFERRED"
	ExtendedUnacceptable ExtendedPreferenceType = "UNACCEPTABLE"
)

// ToExtended maps the stored two-state (+nil) preference to the display
// three-state. Exact inverse of FromExtended.
func ToExtended(t *PreferenceType) ExtendedPreferenceType {
	if t == nil {
		return ExtendedAcceptable
	}
	switch *t {
	case PreferencePreferred:
		return ExtendedPreferred
	case PreferenceUnacceptable:
		return ExtendedUnacceptable
	}
	return ExtendedAcceptable
}

// FromExtended maps the display three-state back to the stored form.
func FromExtended(t ExtendedPreferenceType) *PreferenceType {
	switch t {
	case ExtendedPreferred:
		p := PreferencePreferred
		return &p
	case ExtendedUnacceptable:
		p := PreferenceUnacceptable
		return &p
	}
	return nil
}

// Reader is a reader's bidding record within one instance: three pairwise
// disjoint project-id sets plus how many projects they can take.
// Projects in none of the sets are implicitly acceptable.
type Reader struct {
	ID         string   `json:"id"`
	InstanceID string   `json:"instance_id"`
	Capacity   int      `json:"capacity"`

	Preferable   []string `json:"preferable"`
	Unacceptable []string `json:"unacceptable"`
	Conflict     []string `json:"conflict"` // conflict of interest, eg. co-supervision
}

// NewPreferences is a reader's preference submission payload.
type NewPreferences struct {
	Preferable   []string `json:"preferable" validate:"omitempty,unique,dive,required"`
	Unacceptable []string `json:"unacceptable" validate:"omitempty,unique,dive,required"`
	Conflict     []string `json:"conflict" validate:"omitempty,unique,dive,required"`
}

// Validate enforces pairwise disjointness: a project id may appear in at most
// one of the three sets.
func (np *NewPreferences) Validate() error {
	if err := core.Validate.Struct(np); err != nil {
		return err
	}

	seen := make(map[string]string, len(np.Preferable)+len(np.Unacceptable)+len(np.Conflict))
	for _, set := range []struct {
		field string
		ids   []string
	}{
		{"preferable", np.Preferable},
		{"unacceptable", np.Unacceptable},
		{"conflict", np.Conflict},
	} {
		for _, id := range set.ids {
			if other, ok := seen[id]; ok {
				return core.NewValidationError(nil, core.FieldError{
					Field: set.field,
					Error: "project " + id + " already appears in " + other,
				})
			}
			seen[id] = set.field
		}
	}
	return nil
}

// CSV export row types. The rows are the export contract; actual CSV
// formatting stays in the HTTP layer.

type PreferenceCSVRow struct {
	ReaderID  string
	ProjectID string
	Type      string // CONFLICT | PREFERABLE | UNACCEPTABLE
}

const (
	csvTypeConflict     = "CONFLICT"
	csvTypePreferable   = "PREFERABLE"
	csvTypeUnacceptable = "UNACCEPTABLE"
)

// PreferenceCSVRows flattens every reader's explicit preference sets.
// Implicitly acceptable projects are not exported.
func PreferenceCSVRows(readers []Reader) []PreferenceCSVRow {
	var rows []PreferenceCSVRow
	for _, r := range readers {
		for _, pid := range r.Conflict {
			rows = append(rows, PreferenceCSVRow{ReaderID: r.ID, ProjectID: pid, Type: csvTypeConflict})
		}
		for _, pid := range r.Preferable {
			rows = append(rows, PreferenceCSVRow{ReaderID: r.ID, ProjectID: pid, Type: csvTypePreferable})
		}
		for _, pid := range r.Unacceptable {
			rows = append(rows, PreferenceCSVRow{ReaderID: r.ID, ProjectID: pid, Type: csvTypeUnacceptable})
		}
	}
	return rows
}

type AllocationCSVRow struct {
	ReaderID  string
	ProjectID string
}

// AllocationCSVRows flattens a validated allocation result.
func AllocationCSVRows(out MatchingOutput) []AllocationCSVRow {
	rows := make([]AllocationCSVRow, 0, len(out.Assignments))
	for _, a := range out.Assignments {
		rows = append(rows, AllocationCSVRow{ReaderID: a.ReaderID, ProjectID: a.ProjectID})
	}
	return rows
}
