package main

import (
	"context"

	"github.com/classpig/backend/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	rp := user.ResetPassword{Username: usr.Username, Password: pwd}
	if err := rp.Validate(cli.validate); err != nil {
		return cli.validationError(err)
	}
	_, err = cli.usrSvc.SetPassword(ctx, usr, rp.Password)
	return err
}
