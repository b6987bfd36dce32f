package main

import (
	"context"
	"fmt"

	"github.com/trezcool/shkola/core/user"
)

// addUser creates a user.User, or refreshes the names and password of the one owning nu.Email.
func (cli *commandLine) addUser(ctx context.Context, nu user.NewUser) error {
	usr, created, err := cli.usrSvc.AddOrUpdate(ctx, nu)
	if err != nil {
		return cli.explain(err)
	}
	if created {
		fmt.Printf("created %s %s <%s>\n", usr.Role, usr.FullName(), usr.Email)
	} else {
		fmt.Printf("updated %s %s <%s>\n", usr.Role, usr.FullName(), usr.Email)
	}
	return nil
}
