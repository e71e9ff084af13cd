package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/ioutil"
	"log"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpig/backend/core"
	"github.com/classpig/backend/core/attendance"
	"github.com/classpig/backend/core/schedule"
	"github.com/classpig/backend/core/user"
	inmemdb "github.com/classpig/backend/storage/database/inmem"
	"github.com/classpig/backend/testutil"
)

var (
	usrRepo user.Repository
	clsRepo schedule.Repository
	ledger  attendance.Ledger
)

func setup(t *testing.T) *commandLine {
	logger = log.New(ioutil.Discard, "", 0)

	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	clsRepo = inmemdb.NewClassRepository(db)
	ledger = inmemdb.NewAttendanceLedger(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	return &commandLine{
		usrSvc:     user.NewService(usrRepo),
		validate:   validate,
		translator: translator,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwd        string
	wantErr    error
	wantErrStr string
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func runCLITest(t *testing.T, cli *commandLine, tt cliTest) error {
	mockPassword(tt.pwd)
	err := cli.run(append([]string{"admin"}, tt.args...))
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
	return err
}

func Test_commandLine_usage(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLITest(t, cli, tt)
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotCommand, gotDir string
	var gotArgs []string
	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		gotCommand, gotDir, gotArgs = command, dir, args
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLITest(t, cli, tt)
		})
	}

	t.Run("forwards arguments", func(t *testing.T) {
		runCLITest(t, cli, cliTest{args: []string{"migrate", "up-to", "1"}})
		assert.Equal(t, "up-to", gotCommand)
		assert.Equal(t, "migrations", gotDir)
		assert.Equal(t, []string{"1"}, gotArgs)
	})
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	testutil.CreateUser(t, usrRepo, "taken", "s3cretPass")

	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "newbie"}, wantErr: errHelp},
		{name: "invalid username", args: []string{"adduser", "-username", "no way"}, pwd: "s3cretPass", wantErrStr: "username: only alphanumeric characters and underscores are allowed"},
		{name: "weak password", args: []string{"adduser", "-username", "newbie"}, pwd: "short", wantErrStr: "password: password must contain at least 8 characters"},
		{name: "username taken", args: []string{"adduser", "-username", "Taken"}, pwd: "s3cretPass", wantErrStr: user.ErrUsernameExists.Error()},
		{name: "created", args: []string{"adduser", "-username", "Newbie"}, pwd: "s3cretPass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLITest(t, cli, tt)
		})
	}

	usr, err := cli.usrSvc.Authenticate(context.Background(), "newbie", "s3cretPass")
	require.NoError(t, err)
	assert.Equal(t, "newbie", usr.Username)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "awesome_user", "oldPassw0rd")

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "awesome_user"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "newPassw0rd", wantErr: user.ErrNotFound},
		{name: "numeric password", args: []string{"resetpassword", "-username", "awesome_user"}, pwd: "1234567890", wantErrStr: "password: password cannot be entirely numeric"},
		{name: "similar to username", args: []string{"resetpassword", "-username", "awesome_user"}, pwd: "Awesome_User1", wantErrStr: "password: password is too similar to the username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLITest(t, cli, tt)
		})
	}

	t.Run("reset", func(t *testing.T) {
		runCLITest(t, cli, cliTest{args: []string{"resetpassword", "-username", "AWESOME_USER"}, pwd: "newPassw0rd"})

		refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		assert.NotEqual(t, usr.PasswordHash, refreshed.PasswordHash)
		assert.NoError(t, refreshed.CheckPassword("newPassw0rd"))
	})
}

func Test_commandLine_deleteUser(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "leaver", "s3cretPass")
	cls := testutil.CreateClass(t, clsRepo, usr.ID, "Algorithms", "Gates", "9:00 AM")

	tests := []cliTest{
		{name: "no args", args: []string{"deleteuser"}, wantErr: errHelp},
		{name: "user not found", args: []string{"deleteuser", "-username", "lol"}, wantErr: user.ErrNotFound},
		{name: "deleted", args: []string{"deleteuser", "-username", "leaver"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCLITest(t, cli, tt)
		})
	}

	ctx := context.Background()
	_, err := usrRepo.GetUser(ctx, user.GetFilter{ID: usr.ID})
	assert.Equal(t, user.ErrNotFound, err)
	_, err = clsRepo.GetClass(ctx, usr.ID, cls.ID)
	assert.Equal(t, schedule.ErrNotFound, err)
}
