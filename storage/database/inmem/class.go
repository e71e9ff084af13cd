package inmemdb

import (
	"context"
	"sort"

	"github.com/classpig/backend/core/schedule"
)

type classRepository struct {
	db *DB
}

var _ schedule.Repository = (*classRepository)(nil)

func NewClassRepository(db *DB) schedule.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) QueryClasses(_ context.Context, userID int) ([]schedule.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]schedule.Class, 0)
	for _, cls := range repo.db.classes {
		if cls.UserID == userID {
			classes = append(classes, *cls)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *classRepository) GetClass(_ context.Context, userID, id int) (schedule.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cls, ok := repo.db.classes[id]; ok && cls.UserID == userID {
		return *cls, nil
	}
	return schedule.Class{}, schedule.ErrNotFound
}

func (repo *classRepository) CreateClass(_ context.Context, cls schedule.Class) (schedule.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	return repo.insert(cls)
}

func (repo *classRepository) ReplaceClasses(_ context.Context, userID int, classes []schedule.Class) ([]schedule.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.deleteClasses(func(cls *schedule.Class) bool { return cls.UserID == userID })
	created := make([]schedule.Class, 0, len(classes))
	for _, cls := range classes {
		cls.UserID = userID
		cls, err := repo.insert(cls)
		if err != nil {
			return nil, err
		}
		created = append(created, cls)
	}
	return created, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, cls schedule.Class) (schedule.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.classes[cls.ID]
	if !ok || orig.UserID != cls.UserID {
		return schedule.Class{}, schedule.ErrNotFound
	}
	orig.Name = cls.Name
	orig.Location = cls.Location
	orig.StartTime = cls.StartTime
	orig.EndTime = cls.EndTime
	return *orig, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, userID, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if cls, ok := repo.db.classes[id]; !ok || cls.UserID != userID {
		return schedule.ErrNotFound
	}
	repo.db.deleteClasses(func(cls *schedule.Class) bool { return cls.ID == id })
	return nil
}

// insert must be called with the write lock held.
func (repo *classRepository) insert(cls schedule.Class) (schedule.Class, error) {
	if _, ok := repo.db.users[cls.UserID]; !ok {
		return schedule.Class{}, schedule.ErrNotFound
	}
	repo.db.classSeq++
	cls.ID = repo.db.classSeq
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}
