package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/provision"
	"github.com/shulehub/shule/core/student"
	"github.com/shulehub/shule/core/teacher"
	"github.com/shulehub/shule/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrSvc      user.ServiceInterface
	provider    auth.Provider
	provisioner *provision.Provisioner
	counter     provision.Counter
	validate    *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  addadmin -name NAME -email EMAIL            - create an admin account; password prompted")
	fmt.Println("  provisionteacher -name NAME [-email EMAIL] [-class CLASS]")
	fmt.Println("  provisionstudent -name NAME -class CLASS -dob YYYY-MM-DD ... (see -h)")
	fmt.Println("  resetpassword -email EMAIL                  - reset an account's password; prompted next")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "addadmin":
		return cli.runAddAdmin(args[2:])
	case "provisionteacher":
		return cli.runProvisionTeacher(args[2:])
	case "provisionstudent":
		return cli.runProvisionStudent(args[2:])
	case "resetpassword":
		return cli.runResetPassword(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) runAddAdmin(args []string) error {
	cmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	name := cmd.String("name", "", "The admin's full name.")
	email := cmd.String("email", "", "The admin's login email. The password will be prompted next.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		cmd.Usage()
		return errHelp
	}

	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}
	return cli.addAdmin(*name, *email, pwd)
}

func (cli *commandLine) runProvisionTeacher(args []string) error {
	cmd := flag.NewFlagSet("provisionteacher", flag.ExitOnError)
	nt := teacher.NewTeacher{}
	cmd.StringVar(&nt.Name, "name", "", "The teacher's full name.")
	cmd.StringVar(&nt.Email, "email", "", "The teacher's personal email; credentials are sent there.")
	cmd.StringVar(&nt.Class, "class", "", "The class assigned to the teacher.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if nt.Name == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.provisionTeacher(nt)
}

func (cli *commandLine) runProvisionStudent(args []string) error {
	cmd := flag.NewFlagSet("provisionstudent", flag.ExitOnError)
	ns := student.NewStudent{}
	cmd.StringVar(&ns.Name, "name", "", "The student's full name.")
	cmd.StringVar(&ns.Class, "class", "", "The class the student is admitted to.")
	cmd.StringVar(&ns.AdmissionDate, "admission", "", "Admission date, YYYY-MM-DD.")
	cmd.StringVar(&ns.DOB, "dob", "", "Date of birth, YYYY-MM-DD.")
	cmd.StringVar(&ns.Gender, "gender", "", "The student's gender.")
	cmd.StringVar(&ns.FatherName, "father", "", "The father's name.")
	cmd.StringVar(&ns.Cast, "cast", "", "The family cast.")
	cmd.StringVar(&ns.Occupation, "occupation", "", "The guardian's occupation.")
	cmd.StringVar(&ns.Residence, "residence", "", "The family residence.")
	cmd.StringVar(&ns.Email, "email", "", "The student's personal email; credentials are sent there.")
	cmd.StringVar(&ns.Remarks, "remarks", "", "Free-form remarks.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if ns.Name == "" {
		cmd.Usage()
		return errHelp
	}
	return cli.provisionStudent(ns)
}

func (cli *commandLine) runResetPassword(args []string) error {
	cmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	email := cmd.String("email", "", "The account's login email. The password will be prompted next.")
	if err := cmd.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		cmd.Usage()
		return errHelp
	}

	pwd, err := cli.promptPassword()
	if err != nil {
		return err
	}
	return cli.resetPassword(*email, pwd)
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}
