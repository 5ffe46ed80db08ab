package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/hatag-tech/elearning/core/learning"
	"github.com/hatag-tech/elearning/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out      io.Writer
	usrSvc   *user.Service
	learnSvc *learning.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -role Student|Instructor [-username USERNAME] - create an account")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL - reset user's password")
	fmt.Fprintln(cli.out, "  approvals - list the courses awaiting approval")
	fmt.Fprintln(cli.out, "  approve -course ID [-reject] - approve or reject a pending course")
	fmt.Fprintln(cli.out, "  catalog [-search TEXT] [-category NAME] [-level LEVEL] [-page N] - browse the catalog")
	fmt.Fprintln(cli.out, "  certificate -user ID -course ID - check eligibility and issue a certificate")
	fmt.Fprintln(cli.out, "  stats - platform statistics")
}

// readPassword prompts for a password without echoing it.
func (cli *commandLine) readPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserRole := addUserCmd.String("role", string(user.RoleStudent), "Student or Instructor.")
	addUserUname := addUserCmd.String("username", "", "The user's display name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	approveCmd := flag.NewFlagSet("approve", flag.ContinueOnError)
	approveCourse := approveCmd.String("course", "", "The pending course ID.")
	approveReject := approveCmd.Bool("reject", false, "Reject (and delete) the course instead.")

	catalogCmd := flag.NewFlagSet("catalog", flag.ContinueOnError)
	catalogSearch := catalogCmd.String("search", "", "Case-insensitive title search.")
	catalogCategory := catalogCmd.String("category", "All", "Category name.")
	catalogLevel := catalogCmd.String("level", "All", "Beginner, Intermediate or Advanced.")
	catalogPage := catalogCmd.Int("page", 1, "Page number.")

	certificateCmd := flag.NewFlagSet("certificate", flag.ContinueOnError)
	certificateUser := certificateCmd.String("user", "", "The student ID.")
	certificateCourse := certificateCmd.String("course", "", "The course ID.")

	for _, fs := range []*flag.FlagSet{addUserCmd, resetPasswordCmd, approveCmd, catalogCmd, certificateCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, user.Role(*addUserRole), *addUserUname, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)
	case "approvals":
		cli.listApprovals()
		return nil
	case "approve":
		if err := approveCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *approveCourse == "" {
			approveCmd.Usage()
			return errHelp
		}
		return cli.approve(*approveCourse, !*approveReject)
	case "catalog":
		if err := catalogCmd.Parse(args[2:]); err != nil {
			return err
		}
		cli.catalog(learning.CatalogFilter{
			Search:   *catalogSearch,
			Category: *catalogCategory,
			Level:    learning.Level(*catalogLevel),
			Page:     *catalogPage,
		})
		return nil
	case "certificate":
		if err := certificateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *certificateUser == "" || *certificateCourse == "" {
			certificateCmd.Usage()
			return errHelp
		}
		return cli.certificate(*certificateUser, *certificateCourse)
	case "stats":
		cli.stats()
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}
