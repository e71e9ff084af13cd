package main

import (
	"github.com/pressly/goose/v3"

	"github.com/classpig/backend/storage/database"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	if err := database.SetupMigrations(); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.db, database.MigrationsDir, args[1:]...)
}
