package instance

import (
	"strings"
	"time"

	"github.com/trezcool/mgawo/core"
)

// Instance is one running edition of the allocation process
// (eg. one academic year of one course), scoped group > sub-group > instance.
type Instance struct {
	ID          string `json:"id"`
	Group       string `json:"group"`
	SubGroup    string `json:"sub_group"`
	DisplayName string `json:"display_name"`
	Stage       Stage  `json:"stage"`

	// student preference submission bounds
	MinStudentPreferences       int `json:"min_student_preferences"`
	MaxStudentPreferences       int `json:"max_student_preferences"`
	MaxPreferencesPerSupervisor int `json:"max_preferences_per_supervisor"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewInstance contains information needed to create a new Instance.
type NewInstance struct {
	Group       string `json:"group" validate:"required,alphanum_"`
	SubGroup    string `json:"sub_group" validate:"required,alphanum_"`
	DisplayName string `json:"display_name" validate:"required"`

	MinStudentPreferences       int `json:"min_student_preferences" validate:"min=1"`
	MaxStudentPreferences       int `json:"max_student_preferences" validate:"gtefield=MinStudentPreferences"`
	MaxPreferencesPerSupervisor int `json:"max_preferences_per_supervisor" validate:"min=1,ltefield=MaxStudentPreferences"`
}

func (ni *NewInstance) Validate() error {
	ni.Group = core.CleanString(ni.Group, true /* lower */)
	ni.SubGroup = core.CleanString(ni.SubGroup, true /* lower */)
	ni.DisplayName = core.CleanString(ni.DisplayName)
	return core.Validate.Struct(ni)
}

// UpdateInstance defines what information may be provided to modify an existing Instance.
// The stage is deliberately absent: it only moves via Service.SetStage.
type UpdateInstance struct {
	DisplayName string `json:"display_name"`

	MinStudentPreferences       *int `json:"min_student_preferences" validate:"omitempty,min=1"`
	MaxStudentPreferences       *int `json:"max_student_preferences" validate:"omitempty,min=1"`
	MaxPreferencesPerSupervisor *int `json:"max_preferences_per_supervisor" validate:"omitempty,min=1"`
}

func (ui *UpdateInstance) Validate(orig Instance) error {
	name := core.CleanString(ui.DisplayName)
	if name != "" {
		ui.DisplayName = name
	} else {
		ui.DisplayName = orig.DisplayName
	}

	if err := core.Validate.Struct(ui); err != nil {
		return err
	}

	min := orig.MinStudentPreferences
	if ui.MinStudentPreferences != nil {
		min = *ui.MinStudentPreferences
	}
	max := orig.MaxStudentPreferences
	if ui.MaxStudentPreferences != nil {
		max = *ui.MaxStudentPreferences
	}
	if max < min {
		return core.NewValidationError(nil, core.FieldError{
			Field: "max_student_preferences",
			Error: "must be greater than or equal to min_student_preferences",
		})
	}
	return nil
}

// SetStageRequest moves an instance to a new lifecycle stage.
type SetStageRequest struct {
	Stage Stage `json:"stage" validate:"required"`
}

func (ss *SetStageRequest) Validate() error {
	ss.Stage = Stage(strings.ToUpper(core.CleanString(string(ss.Stage))))
	if err := core.Validate.Struct(ss); err != nil {
		return err
	}
	if !ss.Stage.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "stage", Error: "unknown stage"})
	}
	return nil
}
