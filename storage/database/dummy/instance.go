package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/mgawo/core"
	"github.com/trezcool/mgawo/core/instance"
)

type instanceRepository struct {
	db *instanceTable
}

var _ instance.Repository = (*instanceRepository)(nil) // interface compliance check

func NewInstanceRepository(db *DB) instance.Repository {
	return &instanceRepository{db: db.instance}
}

func (repo *instanceRepository) CheckInstanceUniqueness(_ context.Context, group, subGroup string, _ ...core.DBExecutor) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, inst := range repo.db.table {
		if inst.Group == group && inst.SubGroup == subGroup {
			return instance.ErrExists
		}
	}
	return nil
}

func (repo *instanceRepository) CreateInstance(_ context.Context, inst instance.Instance, _ ...core.DBExecutor) (instance.Instance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inst.ID = uuid.New().String()
	repo.db.table[inst.ID] = &inst
	return inst, nil
}

func (repo *instanceRepository) QueryAllInstances(_ context.Context, _ ...core.DBExecutor) ([]instance.Instance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	instances := make([]instance.Instance, 0, len(repo.db.table))
	for _, inst := range repo.db.table {
		instances = append(instances, *inst)
	}
	sort.Slice(instances, func(i, j int) bool {
		if instances[i].Group != instances[j].Group {
			return instances[i].Group < instances[j].Group
		}
		return instances[i].SubGroup < instances[j].SubGroup
	})
	return instances, nil
}

func (repo *instanceRepository) GetInstanceByID(_ context.Context, id string, _ ...core.DBExecutor) (instance.Instance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inst, ok := repo.db.table[id]; ok {
		return *inst, nil
	}
	return instance.Instance{}, instance.ErrNotFound
}

func (repo *instanceRepository) UpdateInstance(_ context.Context, inst instance.Instance, _ ...core.DBExecutor) (instance.Instance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[inst.ID]; !ok {
		return instance.Instance{}, instance.ErrNotFound
	}
	repo.db.table[inst.ID] = &inst
	return inst, nil
}

func (repo *instanceRepository) DeleteInstancesByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
