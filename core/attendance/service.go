package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/classpig/backend/core"
	"github.com/classpig/backend/core/classtime"
	"github.com/classpig/backend/core/geo"
	"github.com/classpig/backend/core/schedule"
)

// ClassGetter finds a class owned by a user. It returns schedule.ErrNotFound otherwise.
type ClassGetter interface {
	Get(ctx context.Context, userID, id int) (schedule.Class, error)
}

type Service struct {
	classes   ClassGetter
	ledger    Ledger
	buildings *geo.BuildingTable
	conf      core.CheckInConfig
	reward    RewardFunc
}

func NewService(classes ClassGetter, ledger Ledger, buildings *geo.BuildingTable, conf core.CheckInConfig) *Service {
	if conf.WindowMinutes <= 0 {
		conf.WindowMinutes = classtime.DefaultHalfWidth
	}
	if conf.MaxDistanceMeters <= 0 {
		conf.MaxDistanceMeters = core.DefaultMaxDistanceMeters
	}
	if conf.Cooldown <= 0 {
		conf.Cooldown = core.DefaultCooldown
	}
	return &Service{
		classes:   classes,
		ledger:    ledger,
		buildings: buildings,
		conf:      conf,
		reward:    RandomReward,
	}
}

// CheckIn records the user's attendance to a class and grants a random reward.
// Checks run in order and stop at the first failure, which is returned as a *RejectionError:
// class ownership, start time window, building lookup, distance, then cooldown.
// The cooldown check and the insert are a single ledger operation.
func (svc *Service) CheckIn(ctx context.Context, userID, classID int, lat, lon float64, now time.Time) (Result, error) {
	cls, err := svc.classes.Get(ctx, userID, classID)
	if err != nil {
		if errors.Cause(err) == schedule.ErrNotFound {
			return Result{}, reject(ReasonNotFound)
		}
		return Result{}, errors.Wrap(err, "getting class")
	}

	if !classtime.IsWithinWindow(cls.StartTime, now, svc.conf.WindowMinutes) {
		return Result{}, &RejectionError{Reason: ReasonOutsideWindow, WindowMinutes: svc.conf.WindowMinutes}
	}

	building, err := svc.buildings.Lookup(cls.Location)
	if err != nil {
		return Result{}, &RejectionError{Reason: ReasonUnknownLocation, Location: cls.Location}
	}

	if dist := geo.DistanceMeters(lat, lon, building.Lat, building.Lon); dist > svc.conf.MaxDistanceMeters {
		return Result{}, &RejectionError{Reason: ReasonTooFar, Distance: dist}
	}

	reward, err := svc.reward()
	if err != nil {
		return Result{}, errors.Wrap(err, "drawing reward")
	}

	att := Attendance{
		UserID:     userID,
		ClassID:    cls.ID,
		Reward:     reward,
		AttendedAt: now.UTC(),
	}
	att, err = svc.ledger.RecordAttendanceOnce(ctx, att, now.Add(-svc.conf.Cooldown))
	if err != nil {
		// ErrConstraintViolation cannot happen once the class was found; it is a server error if it does
		if conflict, ok := errors.Cause(err).(*ConflictError); ok {
			return Result{}, &RejectionError{
				Reason:   ReasonCooldown,
				RetryAt:  conflict.Existing.AttendedAt.Add(svc.conf.Cooldown),
				Cooldown: svc.conf.Cooldown,
			}
		}
		return Result{}, errors.Wrap(err, "recording attendance")
	}

	total, err := svc.ledger.TotalRewards(ctx, userID)
	if err != nil {
		return Result{}, errors.Wrap(err, "summing rewards")
	}
	return Result{Attendance: att, Reward: reward, TotalRewards: total}, nil
}

func (svc *Service) TotalRewards(ctx context.Context, userID int) (int, error) {
	return svc.ledger.TotalRewards(ctx, userID)
}

func (svc *Service) History(ctx context.Context, userID int) ([]Attendance, error) {
	return svc.ledger.QueryAttendance(ctx, userID)
}

// CanCheckIn reports whether the class is out of its cooldown for the user at `now`.
func (svc *Service) CanCheckIn(ctx context.Context, userID, classID int, now time.Time) (bool, error) {
	recent, err := svc.ledger.HasRecentAttendance(ctx, userID, classID, now.Add(-svc.conf.Cooldown))
	if err != nil {
		return false, errors.Wrap(err, "checking recent attendance")
	}
	return !recent, nil
}
