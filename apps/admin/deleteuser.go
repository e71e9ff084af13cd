package main

import (
	"context"
)

func (cli *commandLine) deleteUser(uname string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	if err := cli.usrSvc.Delete(ctx, usr.ID); err != nil {
		return err
	}
	logger.Printf("user %q deleted", usr.Username)
	return nil
}
