package dummydb

import (
	"sync"
	"time"

	"github.com/trezcool/mgawo/core/allocation"
	"github.com/trezcool/mgawo/core/instance"
	"github.com/trezcool/mgawo/core/reader"
	"github.com/trezcool/mgawo/core/user"
)

// DB is an in-memory stand-in for the real database, used in tests.
type (
	DB struct {
		user       *userTable
		instance   *instanceTable
		allocation *allocationTable
		reader     *readerTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	instanceTable struct {
		sync.RWMutex
		table     map[string]*instance.Instance
		published map[string]time.Time
	}

	allocationTable struct {
		sync.RWMutex
		supervisors map[string][]allocation.Supervisor // instanceID -> rows
		projects    map[string][]*allocation.Project
		students    map[string][]*allocation.Student
		emails      map[string][]string
		assignments map[string][]allocation.Assignment
	}

	readerTable struct {
		sync.RWMutex
		readers     map[string][]*reader.Reader // instanceID -> rows
		projectIDs  map[string][]string
		assignments map[string][]reader.MatchingAssignment
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*user.User)},
		instance: &instanceTable{
			table:     make(map[string]*instance.Instance),
			published: make(map[string]time.Time),
		},
		allocation: &allocationTable{
			supervisors: make(map[string][]allocation.Supervisor),
			projects:    make(map[string][]*allocation.Project),
			students:    make(map[string][]*allocation.Student),
			emails:      make(map[string][]string),
			assignments: make(map[string][]allocation.Assignment),
		},
		reader: &readerTable{
			readers:     make(map[string][]*reader.Reader),
			projectIDs:  make(map[string][]string),
			assignments: make(map[string][]reader.MatchingAssignment),
		},
	}
	return db, nil
}

// test fixtures

func (db *DB) SeedSupervisors(instanceID string, sups ...allocation.Supervisor) {
	db.allocation.Lock()
	defer db.allocation.Unlock()
	db.allocation.supervisors[instanceID] = append(db.allocation.supervisors[instanceID], sups...)
}

func (db *DB) SeedProjects(instanceID string, projects ...allocation.Project) {
	db.allocation.Lock()
	defer db.allocation.Unlock()
	for i := range projects {
		p := projects[i]
		db.allocation.projects[instanceID] = append(db.allocation.projects[instanceID], &p)
	}
}

func (db *DB) SeedStudents(instanceID string, students ...allocation.Student) {
	db.allocation.Lock()
	defer db.allocation.Unlock()
	for i := range students {
		s := students[i]
		db.allocation.students[instanceID] = append(db.allocation.students[instanceID], &s)
	}
}

func (db *DB) SeedStudentEmails(instanceID string, emails ...string) {
	db.allocation.Lock()
	defer db.allocation.Unlock()
	db.allocation.emails[instanceID] = append(db.allocation.emails[instanceID], emails...)
}

func (db *DB) SeedReaders(instanceID string, readers ...reader.Reader) {
	db.reader.Lock()
	defer db.reader.Unlock()
	for i := range readers {
		r := readers[i]
		db.reader.readers[instanceID] = append(db.reader.readers[instanceID], &r)
	}
}

func (db *DB) SeedProjectIDs(instanceID string, ids ...string) {
	db.reader.Lock()
	defer db.reader.Unlock()
	db.reader.projectIDs[instanceID] = append(db.reader.projectIDs[instanceID], ids...)
}

func (db *DB) PublishedAt(instanceID string) (time.Time, bool) {
	db.instance.RLock()
	defer db.instance.RUnlock()
	at, ok := db.instance.published[instanceID]
	return at, ok
}
