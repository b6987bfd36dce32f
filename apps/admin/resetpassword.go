package main

import (
	"context"

	"github.com/trezcool/shkola/core/user"
)

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	_, err := cli.usrSvc.ResetPassword(ctx, user.ResetUserPassword{Email: email, Password: pwd})
	return cli.explain(err)
}
