// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"testing"
	"time"

	"github.com/classpig/backend/core"
	"github.com/classpig/backend/core/schedule"
	"github.com/classpig/backend/core/user"
	logsvc "github.com/classpig/backend/services/logger"
)

// Config returns the configuration used by tests, independent of the environment.
func Config() *core.Config {
	return &core.Config{
		Env:       "TEST",
		Build:     "test",
		TestMode:  true,
		AppName:   "ClassPig",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			Host:                      "localhost",
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
		CheckIn: core.CheckInConfig{
			WindowMinutes:     core.DefaultWindowMinutes,
			MaxDistanceMeters: core.DefaultMaxDistanceMeters,
			Cooldown:          core.DefaultCooldown,
		},
	}
}

// NewLogger returns a logger that discards everything.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
}

func CreateUser(t *testing.T, repo user.Repository, uname, pwd string, createdAt ...time.Time) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClass(t *testing.T, repo schedule.Repository, userID int, name, location, startTime string) schedule.Class {
	t.Helper()
	cls, err := repo.CreateClass(context.Background(), schedule.Class{
		UserID:    userID,
		Name:      name,
		Location:  location,
		StartTime: startTime,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

// StartTimeAt formats `t` the way class start times are written, e.g. "9:05 AM".
func StartTimeAt(t time.Time) string {
	return t.Format("3:04 PM")
}
