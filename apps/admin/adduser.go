package main

import (
	"context"

	"github.com/classpig/backend/core/user"
)

func (cli *commandLine) addUser(uname, pwd string) error {
	ctx := context.Background()
	nu := user.NewUser{Username: uname, Password: pwd}
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return cli.validationError(err)
	}
	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	logger.Printf("user %q created (id %d)", usr.Username, usr.ID)
	return nil
}
