package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/reader"
)

const (
	prefTypePreferred    = "PREFERRED"
	prefTypeUnacceptable = "UNACCEPTABLE"
	prefTypeConflict     = "CONFLICT"
)

type (
	readerRow struct {
		UserID     string `db:"user_id"`
		InstanceID string `db:"instance_id"`
		Capacity   int    `db:"capacity"`
	}

	readerPrefRow struct {
		InstanceID string `db:"instance_id"`
		ReaderID   string `db:"reader_id"`
		ProjectID  string `db:"project_id"`
		Type       string `db:"type"`
	}
)

type readerRepository struct {
	db *sqlx.DB
}

var _ reader.Repository = (*readerRepository)(nil) // interface compliance check

func NewReaderRepository(db *sql.DB, conf *core.Config) *readerRepository {
	return &readerRepository{db: sqlx.NewDb(db, conf.Database.Engine)}
}

// attachPrefs folds preference rows into the reader's three sets.
func attachPrefs(r *reader.Reader, prefs []readerPrefRow) {
	for _, p := range prefs {
		if p.ReaderID != r.ID {
			continue
		}
		switch p.Type {
		case prefTypePreferred:
			r.Preferable = append(r.Preferable, p.ProjectID)
		case prefTypeUnacceptable:
			r.Unacceptable = append(r.Unacceptable, p.ProjectID)
		case prefTypeConflict:
			r.Conflict = append(r.Conflict, p.ProjectID)
		}
	}
}

func (repo readerRepository) queryPrefs(ctx context.Context, exe sqlx.ExtContext, instanceID string) ([]readerPrefRow, error) {
	var prefs []readerPrefRow
	query := exe.Rebind(`SELECT * FROM reader_preference WHERE instance_id = ? ORDER BY reader_id, project_id`)
	if err := sqlx.SelectContext(ctx, exe, &prefs, query, instanceID); err != nil {
		return nil, errors.Wrap(err, "querying reader preferences")
	}
	return prefs, nil
}

func (repo readerRepository) QueryReaders(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]reader.Reader, error) {
	exe := getExec(repo.db, exec)

	var rows []readerRow
	query := exe.Rebind(`SELECT * FROM reader WHERE instance_id = ?`)
	if err := sqlx.SelectContext(ctx, exe, &rows, query, instanceID); err != nil {
		return nil, errors.Wrap(err, "querying readers")
	}

	prefs, err := repo.queryPrefs(ctx, exe, instanceID)
	if err != nil {
		return nil, err
	}

	readers := make([]reader.Reader, 0, len(rows))
	for _, row := range rows {
		r := reader.Reader{ID: row.UserID, InstanceID: row.InstanceID, Capacity: row.Capacity}
		attachPrefs(&r, prefs)
		readers = append(readers, r)
	}
	return readers, nil
}

func (repo readerRepository) GetReaderByID(ctx context.Context, instanceID, readerID string, exec ...core.DBExecutor) (reader.Reader, error) {
	exe := getExec(repo.db, exec)

	var row readerRow
	query := exe.Rebind(`SELECT * FROM reader WHERE instance_id = ? AND user_id = ?`)
	if err := sqlx.GetContext(ctx, exe, &row, query, instanceID, readerID); err != nil {
		if err == sql.ErrNoRows {
			return reader.Reader{}, reader.ErrNotFound
		}
		return reader.Reader{}, errors.Wrap(err, "finding reader")
	}

	var prefs []readerPrefRow
	prefQuery := exe.Rebind(`SELECT * FROM reader_preference WHERE instance_id = ? AND reader_id = ? ORDER BY project_id`)
	if err := sqlx.SelectContext(ctx, exe, &prefs, prefQuery, instanceID, readerID); err != nil {
		return reader.Reader{}, errors.Wrap(err, "querying reader preferences")
	}

	r := reader.Reader{ID: row.UserID, InstanceID: row.InstanceID, Capacity: row.Capacity}
	attachPrefs(&r, prefs)
	return r, nil
}

func (repo readerRepository) QueryProjectIDs(ctx context.Context, instanceID string, exec ...core.DBExecutor) ([]string, error) {
	exe := getExec(repo.db, exec)

	var ids []string
	query := exe.Rebind(`SELECT id FROM project WHERE instance_id = ? ORDER BY title`)
	if err := sqlx.SelectContext(ctx, exe, &ids, query, instanceID); err != nil {
		return nil, errors.Wrap(err, "querying project ids")
	}
	return ids, nil
}

func (repo readerRepository) SaveReaderPreferences(ctx context.Context, instanceID, readerID string, np reader.NewPreferences, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	del := exe.Rebind(`DELETE FROM reader_preference WHERE instance_id = ? AND reader_id = ?`)
	if _, err := exe.ExecContext(ctx, del, instanceID, readerID); err != nil {
		return errors.Wrap(err, "clearing reader preferences")
	}

	ins := exe.Rebind(`INSERT INTO reader_preference (instance_id, reader_id, project_id, type) VALUES (?, ?, ?, ?)`)
	for _, set := range []struct {
		typ string
		ids []string
	}{
		{prefTypePreferred, np.Preferable},
		{prefTypeUnacceptable, np.Unacceptable},
		{prefTypeConflict, np.Conflict},
	} {
		for _, pid := range set.ids {
			if _, err := exe.ExecContext(ctx, ins, instanceID, readerID, pid, set.typ); err != nil {
				return errors.Wrap(err, "inserting reader preference")
			}
		}
	}
	return nil
}

func (repo readerRepository) SaveReaderAssignments(ctx context.Context, instanceID string, assignments []reader.MatchingAssignment, exec ...core.DBExecutor) error {
	exe := getExec(repo.db, exec)

	del := exe.Rebind(`DELETE FROM reader_assignment WHERE instance_id = ?`)
	if _, err := exe.ExecContext(ctx, del, instanceID); err != nil {
		return errors.Wrap(err, "clearing reader assignments")
	}

	ins := exe.Rebind(`INSERT INTO reader_assignment (instance_id, reader_id, project_id) VALUES (?, ?, ?)`)
	for _, a := range assignments {
		if _, err := exe.ExecContext(ctx, ins, instanceID, a.ReaderID, a.ProjectID); err != nil {
			return errors.Wrap(err, "inserting reader assignment")
		}
	}
	return nil
}
