// Package schedule manages each user's daily class schedule.
package schedule

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/classpig/backend/core"
)

// Class is a recurring daily class. Location names a campus building and
// StartTime/EndTime are free-form "H:MM AM/PM" strings, without date or timezone.
type Class struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Location  string    `json:"location" db:"location"`
	StartTime string    `json:"start_time" db:"start_time"`
	EndTime   string    `json:"end_time" db:"end_time"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewClass contains information needed to create a new Class.
type NewClass struct {
	Name      string `json:"name" validate:"notblank,max=100"`
	Location  string `json:"location" validate:"max=100"`
	StartTime string `json:"start_time" validate:"max=20"`
	EndTime   string `json:"end_time" validate:"max=20"`
}

func (nc *NewClass) clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Location = core.CleanString(nc.Location)
	nc.StartTime = core.CleanString(nc.StartTime)
	nc.EndTime = core.CleanString(nc.EndTime)
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.clean()
	return validate.Struct(nc)
}

// NewSchedule replaces a user's whole schedule.
type NewSchedule struct {
	Classes []NewClass `json:"classes" validate:"dive"`
}

func (ns *NewSchedule) Validate(validate *validator.Validate) error {
	for i := range ns.Classes {
		ns.Classes[i].clean()
	}
	return validate.Struct(ns)
}

// UpdateClass defines what information may be provided to modify an existing Class.
// Empty fields keep their current value.
type UpdateClass struct {
	Name      string `json:"name" validate:"max=100"`
	Location  string `json:"location" validate:"max=100"`
	StartTime string `json:"start_time" validate:"max=20"`
	EndTime   string `json:"end_time" validate:"max=20"`
}

func (uc *UpdateClass) Validate(orig Class, validate *validator.Validate) error {
	keep := func(s, orig string) string {
		if s = core.CleanString(s); s != "" {
			return s
		}
		return orig
	}
	uc.Name = keep(uc.Name, orig.Name)
	uc.Location = keep(uc.Location, orig.Location)
	uc.StartTime = keep(uc.StartTime, orig.StartTime)
	uc.EndTime = keep(uc.EndTime, orig.EndTime)
	return validate.Struct(uc)
}
