package main

import (
	"context"

	"github.com/trezcool/markaz/core/user"
)

// resetPassword applies the sign up password policy before replacing the password.
func (cli *commandLine) resetPassword(uname, pwd string) error {
	pr := user.PasswordReset{Username: uname, Password: pwd}
	if err := pr.Validate(cli.validate); err != nil {
		return err
	}
	_, err := cli.usrSvc.SetPassword(context.Background(), pr.Username, pr.Password)
	return err
}
