package main

func (cli *commandLine) resetPassword(email, pwd string) error {
	usr, err := cli.usrSvc.GetByEmail(email)
	if err != nil {
		return err
	}
	return cli.usrSvc.ChangePassword(usr.ID, pwd)
}
