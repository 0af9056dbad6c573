package dummydb

import (
	"context"

	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/reader"
)

type readerRepository struct {
	db *readerTable
}

var _ reader.Repository = (*readerRepository)(nil) // interface compliance check

func NewReaderRepository(db *DB) reader.Repository {
	return &readerRepository{db: db.reader}
}

func (repo *readerRepository) QueryReaders(_ context.Context, instanceID string, _ ...core.DBExecutor) ([]reader.Reader, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	readers := make([]reader.Reader, 0, len(repo.db.readers[instanceID]))
	for _, r := range repo.db.readers[instanceID] {
		readers = append(readers, *r)
	}
	return readers, nil
}

func (repo *readerRepository) GetReaderByID(_ context.Context, instanceID, readerID string, _ ...core.DBExecutor) (reader.Reader, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, r := range repo.db.readers[instanceID] {
		if r.ID == readerID {
			return *r, nil
		}
	}
	return reader.Reader{}, reader.ErrNotFound
}

func (repo *readerRepository) QueryProjectIDs(_ context.Context, instanceID string, _ ...core.DBExecutor) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return append([]string(nil), repo.db.projectIDs[instanceID]...), nil
}

func (repo *readerRepository) SaveReaderPreferences(_ context.Context, instanceID, readerID string, np reader.NewPreferences, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, r := range repo.db.readers[instanceID] {
		if r.ID == readerID {
			r.Preferable = np.Preferable
			r.Unacceptable = np.Unacceptable
			r.Conflict = np.Conflict
			return nil
		}
	}
	repo.db.readers[instanceID] = append(repo.db.readers[instanceID], &reader.Reader{
		ID:           readerID,
		InstanceID:   instanceID,
		Preferable:   np.Preferable,
		Unacceptable: np.Unacceptable,
		Conflict:     np.Conflict,
	})
	return nil
}

func (repo *readerRepository) SaveReaderAssignments(_ context.Context, instanceID string, assignments []reader.MatchingAssignment, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.assignments[instanceID] = append([]reader.MatchingAssignment(nil), assignments...)
	return nil
}
