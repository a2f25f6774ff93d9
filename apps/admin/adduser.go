package main

import (
	"context"

	"github.com/trezcool/markaz/core/user"
)

// addUser registers a user.User, with the same rules as the sign up form.
func (cli *commandLine) addUser(uname, pwd string) (user.User, error) {
	nu := user.NewUser{Username: uname, Password: pwd}
	if err := nu.Validate(cli.validate); err != nil {
		return user.User{}, err
	}
	return cli.usrSvc.Register(context.Background(), nu)
}
