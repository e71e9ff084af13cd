package schedule

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("class not found")

type (
	Repository interface {
		// QueryClasses returns the user's classes, oldest first.
		QueryClasses(ctx context.Context, userID int) ([]Class, error)
		// GetClass returns ErrNotFound when the class does not exist or is not owned by userID.
		GetClass(ctx context.Context, userID, id int) (Class, error)
		CreateClass(ctx context.Context, cls Class) (Class, error)
		// ReplaceClasses atomically deletes all the user's classes, along with their attendance history,
		// then inserts `classes`.
		ReplaceClasses(ctx context.Context, userID int, classes []Class) ([]Class, error)
		UpdateClass(ctx context.Context, cls Class) (Class, error)
		DeleteClass(ctx context.Context, userID, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Query(ctx context.Context, userID int) ([]Class, error) {
	return svc.repo.QueryClasses(ctx, userID)
}

func (svc *Service) Get(ctx context.Context, userID, id int) (Class, error) {
	return svc.repo.GetClass(ctx, userID, id)
}

func (svc *Service) Create(ctx context.Context, userID int, nc NewClass) (Class, error) {
	return svc.repo.CreateClass(ctx, newClass(userID, nc, time.Now().UTC()))
}

// Replace swaps the user's schedule for `ns`. Existing classes are deleted together with
// the attendance rows that reference them.
func (svc *Service) Replace(ctx context.Context, userID int, ns NewSchedule) ([]Class, error) {
	now := time.Now().UTC()
	classes := make([]Class, 0, len(ns.Classes))
	for _, nc := range ns.Classes {
		classes = append(classes, newClass(userID, nc, now))
	}
	return svc.repo.ReplaceClasses(ctx, userID, classes)
}

func (svc *Service) Update(ctx context.Context, orig Class, uc UpdateClass) (Class, error) {
	orig.Name = uc.Name
	orig.Location = uc.Location
	orig.StartTime = uc.StartTime
	orig.EndTime = uc.EndTime
	return svc.repo.UpdateClass(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, userID, id int) error {
	return svc.repo.DeleteClass(ctx, userID, id)
}

func newClass(userID int, nc NewClass, now time.Time) Class {
	return Class{
		UserID:    userID,
		Name:      nc.Name,
		Location:  nc.Location,
		StartTime: nc.StartTime,
		EndTime:   nc.EndTime,
		CreatedAt: now,
	}
}
