package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/instance"
)

type instanceRow struct {
	ID                          string      `db:"id"`
	Group                       string      `db:"group"`
	SubGroup                    string      `db:"sub_group"`
	DisplayName                 null.String `db:"display_name"`
	Stage                       string      `db:"stage"`
	MinStudentPreferences       int         `db:"min_student_preferences"`
	MaxStudentPreferences       int         `db:"max_student_preferences"`
	MaxPreferencesPerSupervisor int         `db:"max_preferences_per_supervisor"`
	PublishedAt                 null.Time   `db:"published_at"`
	CreatedAt                   null.Time   `db:"created_at"`
	UpdatedAt                   null.Time   `db:"updated_at"`
}

func (r instanceRow) toInstance() instance.Instance {
	return instance.Instance{
		ID:                          r.ID,
		Group:                       r.Group,
		SubGroup:                    r.SubGroup,
		DisplayName:                 r.DisplayName.String,
		Stage:                       instance.Stage(r.Stage),
		MinStudentPreferences:       r.MinStudentPreferences,
		MaxStudentPreferences:       r.MaxStudentPreferences,
		MaxPreferencesPerSupervisor: r.MaxPreferencesPerSupervisor,
		CreatedAt:                   r.CreatedAt.Time,
		UpdatedAt:                   r.UpdatedAt.Time,
	}
}

func toInstanceRow(inst instance.Instance) instanceRow {
	return instanceRow{
		ID:                          inst.ID,
		Group:                       inst.Group,
		SubGroup:                    inst.SubGroup,
		DisplayName:                 null.NewString(inst.DisplayName, inst.DisplayName != ""),
		Stage:                       string(inst.Stage),
		MinStudentPreferences:       inst.MinStudentPreferences,
		MaxStudentPreferences:       inst.MaxStudentPreferences,
		MaxPreferencesPerSupervisor: inst.MaxPreferencesPerSupervisor,
		CreatedAt:                   null.NewTime(inst.CreatedAt.UTC(), !inst.CreatedAt.IsZero()),
		UpdatedAt:                   null.NewTime(inst.UpdatedAt.UTC(), !inst.UpdatedAt.IsZero()),
	}
}

type instanceRepository struct {
	db *sqlx.DB
}

var _ instance.Repository = (*instanceRepository)(nil) // interface compliance check

func NewInstanceRepository(db *sql.DB, conf *core.Config) *instanceRepository {
	return &instanceRepository{db: sqlx.NewDb(db, conf.Database.Engine)}
}

func (repo instanceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return instance.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo instanceRepository) CheckInstanceUniqueness(ctx context.Context, group, subGroup string, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	var exists bool
	query := exe.Rebind(`SELECT EXISTS (SELECT 1 FROM instance WHERE "group" = ? AND sub_group = ?)`)
	if err := sqlx.GetContext(ctx, exe, &exists, query, group, subGroup); err != nil {
		return errors.Wrap(err, "checking instance uniqueness")
	}
	if exists {
		return instance.ErrExists
	}
	return nil
}

func (repo instanceRepository) CreateInstance(ctx context.Context, inst instance.Instance, exec ...core.DBExecutor) (instance.Instance, error) {
	inst.ID = uuid.New().String()
	row := toInstanceRow(inst)

	query := `
		INSERT INTO instance (id, "group", sub_group, display_name, stage,
		                      min_student_preferences, max_student_preferences, max_preferences_per_supervisor,
		                      created_at, updated_at)
		VALUES (:id, :group, :sub_group, :display_name, :stage,
		        :min_student_preferences, :max_student_preferences, :max_preferences_per_supervisor,
		        :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row); err != nil {
		return instance.Instance{}, errors.Wrap(err, "inserting instance")
	}
	return row.toInstance(), nil
}

func (repo instanceRepository) QueryAllInstances(ctx context.Context, exec ...core.DBExecutor) ([]instance.Instance, error) {
	exe := getExec(repo.db, exec)

	var rows []instanceRow
	if err := sqlx.SelectContext(ctx, exe, &rows, `SELECT * FROM instance ORDER BY "group", sub_group`); err != nil {
		return nil, errors.Wrap(err, "querying instances")
	}
	instances := make([]instance.Instance, 0, len(rows))
	for _, r := range rows {
		instances = append(instances, r.toInstance())
	}
	return instances, nil
}

func (repo instanceRepository) GetInstanceByID(ctx context.Context, id string, exec ...core.DBExecutor) (instance.Instance, error) {
	if _, err := uuid.Parse(id); err != nil {
		return instance.Instance{}, instance.ErrNotFound
	}
	exe := getExec(repo.db, exec)

	var row instanceRow
	if err := sqlx.GetContext(ctx, exe, &row, exe.Rebind(`SELECT * FROM instance WHERE id = ?`), id); err != nil {
		return instance.Instance{}, repo.trapNoRowsErr(err, "finding instance")
	}
	return row.toInstance(), nil
}

func (repo instanceRepository) UpdateInstance(ctx context.Context, inst instance.Instance, exec ...core.DBExecutor) (instance.Instance, error) {
	row := toInstanceRow(inst)

	query := `
		UPDATE instance
		SET display_name = :display_name, stage = :stage,
		    min_student_preferences = :min_student_preferences,
		    max_student_preferences = :max_student_preferences,
		    max_preferences_per_supervisor = :max_preferences_per_supervisor,
		    updated_at = :updated_at
		WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), query, row); err != nil {
		return instance.Instance{}, errors.Wrap(err, "updating instance")
	}
	return row.toInstance(), nil
}

func (repo instanceRepository) DeleteInstancesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	exe := getExec(repo.db, exec)

	query, args, err := sqlx.In(`DELETE FROM instance WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := exe.ExecContext(ctx, exe.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting instances")
	}
	cnt, _ := res.RowsAffected()
	return int(cnt), nil
}
