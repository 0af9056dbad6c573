package instance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mgawo/core"
)

var (
	// errors
	ErrNotFound = errors.New("instance not found")
	ErrExists   = errors.New("an instance with this group and sub-group already exists")
)

type (
	Repository interface {
		CheckInstanceUniqueness(ctx context.Context, group, subGroup string, exec ...core.DBExecutor) error
		CreateInstance(ctx context.Context, inst Instance, exec ...core.DBExecutor) (Instance, error)
		QueryAllInstances(ctx context.Context, exec ...core.DBExecutor) ([]Instance, error)
		GetInstanceByID(ctx context.Context, id string, exec ...core.DBExecutor) (Instance, error)
		UpdateInstance(ctx context.Context, inst Instance, exec ...core.DBExecutor) (Instance, error)
		DeleteInstancesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, ni NewInstance) (Instance, error)
		QueryAll(ctx context.Context) ([]Instance, error)
		GetByID(ctx context.Context, id string) (Instance, error)
		Update(ctx context.Context, id string, ui UpdateInstance) (Instance, error)
		SetStage(ctx context.Context, id string, stage Stage) (Instance, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo   Repository
		logger core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository, logger core.Logger) *service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (svc *service) Create(ctx context.Context, ni NewInstance) (Instance, error) {
	if err := svc.repo.CheckInstanceUniqueness(ctx, ni.Group, ni.SubGroup); err != nil {
		if errors.Cause(err) == ErrExists {
			return Instance{}, core.NewValidationError(err, core.FieldError{Field: "sub_group", Error: err.Error()})
		}
		return Instance{}, errors.Wrap(err, "checking instance uniqueness")
	}

	now := time.Now().UTC()
	inst := Instance{
		Group:                       ni.Group,
		SubGroup:                    ni.SubGroup,
		DisplayName:                 ni.DisplayName,
		Stage:                       StageSetup,
		MinStudentPreferences:       ni.MinStudentPreferences,
		MaxStudentPreferences:       ni.MaxStudentPreferences,
		MaxPreferencesPerSupervisor: ni.MaxPreferencesPerSupervisor,
		CreatedAt:                   now,
		UpdatedAt:                   now,
	}
	return svc.repo.CreateInstance(ctx, inst)
}

func (svc *service) QueryAll(ctx context.Context) ([]Instance, error) {
	return svc.repo.QueryAllInstances(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Instance, error) {
	return svc.repo.GetInstanceByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ui UpdateInstance) (Instance, error) {
	inst, err := svc.repo.GetInstanceByID(ctx, id)
	if err != nil {
		return Instance{}, err
	}

	inst.DisplayName = ui.DisplayName
	if ui.MinStudentPreferences != nil {
		inst.MinStudentPreferences = *ui.MinStudentPreferences
	}
	if ui.MaxStudentPreferences != nil {
		inst.MaxStudentPreferences = *ui.MaxStudentPreferences
	}
	if ui.MaxPreferencesPerSupervisor != nil {
		inst.MaxPreferencesPerSupervisor = *ui.MaxPreferencesPerSupervisor
	}
	inst.UpdatedAt = time.Now().UTC()

	return svc.repo.UpdateInstance(ctx, inst)
}

// SetStage moves the instance to the given stage. Any transition is legal:
// admins may move backwards to reopen a phase.
func (svc *service) SetStage(ctx context.Context, id string, stage Stage) (Instance, error) {
	inst, err := svc.repo.GetInstanceByID(ctx, id)
	if err != nil {
		return Instance{}, err
	}

	prev := inst.Stage
	inst.Stage = stage
	inst.UpdatedAt = time.Now().UTC()

	inst, err = svc.repo.UpdateInstance(ctx, inst)
	if err != nil {
		return Instance{}, errors.Wrap(err, "updating instance stage")
	}
	svc.logger.Info("instance stage changed", map[string]interface{}{
		"instance": inst.ID, "from": string(prev), "to": string(stage),
	})
	return inst, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteInstancesByID(ctx, ids)
	return err
}
