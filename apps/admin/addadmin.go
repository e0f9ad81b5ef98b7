package main

import (
	"context"
	"fmt"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/provision"
	"github.com/shulehub/shule/core/user"
)

// addAdmin creates an admin role record and its login credential. Admins log
// in with their own email rather than a derived account.
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	id, err := cli.counter.NextID(ctx, string(user.RoleAdmin))
	if err != nil {
		return err
	}

	nu := user.NewUser{
		ID:    provision.RecordKey(user.RoleAdmin, id),
		Name:  core.CleanString(name),
		Email: email,
		Role:  string(user.RoleAdmin),
	}
	if err = nu.Validate(cli.validate, cli.usrSvc); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	if _, err = cli.provider.CreateAccount(ctx, email, pwd); err != nil {
		// roll the role record back so a retry starts clean
		if dErr := cli.usrSvc.Delete(ctx, usr.ID); dErr != nil {
			logger.Printf("removing role record %s: %s\n", usr.ID, dErr)
		}
		return err
	}

	fmt.Printf("admin %s created\n", usr.ID)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	return cli.provider.SetPassword(ctx, core.CleanString(email, true /* lower */), pwd)
}
