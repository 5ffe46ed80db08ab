package main

import (
	"fmt"

	"github.com/hatag-tech/elearning/core/user"
)

// addUser registers a Student or Instructor account without keeping it logged in.
func (cli *commandLine) addUser(email string, role user.Role, uname, pwd string) error {
	usr, res := cli.usrSvc.Register(user.NewUser{
		Email:    email,
		Role:     role,
		Username: uname,
		Password: pwd,
	})
	if err := res.Err(); err != nil {
		return err
	}
	cli.usrSvc.Logout()
	fmt.Fprintf(cli.out, "created %s %s (%s)\n", usr.Role, usr.Email, usr.ID)
	return nil
}
