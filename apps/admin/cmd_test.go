package main

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/provision"
	"github.com/shulehub/shule/core/user"
	"github.com/shulehub/shule/services/email"
	logsvc "github.com/shulehub/shule/services/logger"
	"github.com/shulehub/shule/storage/document/inmem"
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	conf := core.NewTestConfig()
	logger = log.New(os.Stdout, "ADMIN : ", 0)
	appLogger := logsvc.NewStdLogger(logger)

	db := inmem.NewDB()
	provider := auth.NewLocalProvider(inmem.NewCredentialRepository(db), appLogger)
	usrSvc := user.NewService(inmem.NewUserRepository(db), appLogger)
	counter := inmem.NewCounterRepository(db)
	provisioner := provision.NewProvisioner(
		usrSvc, provider, inmem.NewStudentRepository(db), inmem.NewTeacherRepository(db),
		counter, emailsvc.NewConsoleService(conf), conf, appLogger,
	)

	validate := validator.New()
	lang := en.New()
	uni := ut.New(lang, lang)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	return &commandLine{
		usrSvc:      usrSvc,
		provider:    provider,
		provisioner: provisioner,
		counter:     counter,
		validate:    validate,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_addAdmin(t *testing.T) {
	cli := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addadmin"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"addadmin", "-name", "Head"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"addadmin", "-name", "Head", "-email", "head@shule.test"}, wantErr: errHelp},
		{name: "created", args: []string{"addadmin", "-name", "Head", "-email", "head@shule.test"}, extra: extra{pwd: "s3cret"}},
		{name: "email taken", args: []string{"addadmin", "-name", "Head 2", "-email", "head@shule.test"}, extra: extra{pwd: "s3cret"}, wantErrStr: "a user with this email already exists"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				usr, err := cli.usrSvc.GetByID(context.Background(), "admin_1")
				if err != nil {
					t.Fatalf("GetByID() failed, %v", err)
				}
				if !usr.IsAdmin() {
					t.Errorf("role = %v; want admin", usr.Role)
				}
				if _, err = cli.provider.SignIn(context.Background(), "head@shule.test", "s3cret"); err != nil {
					t.Errorf("SignIn() with the new credential failed, %v", err)
				}
				return
			}
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			} else if tt.wantErrStr != "" {
				if err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
				}
			} else {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_provision(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "teacher: no args", args: []string{"provisionteacher"}, wantErr: errHelp},
		{name: "teacher", args: []string{"provisionteacher", "-name", "Asha Odhiambo", "-class", "5th"}},
		{name: "student: no args", args: []string{"provisionstudent"}, wantErr: errHelp},
		{
			name: "student", args: []string{
				"provisionstudent", "-name", "Neema Njoroge", "-class", "5th", "-admission", "2026-04-01",
				"-dob", "2016-09-13", "-gender", "F", "-father", "Juma", "-cast", "-", "-occupation", "farmer",
				"-residence", "Kibera",
			},
		},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}

	// both runs went end to end: role records and credentials exist
	for _, key := range []string{"teacher_1", "student_1"} {
		if _, err := cli.usrSvc.GetByID(context.Background(), key); err != nil {
			t.Errorf("role record %s missing: %v", key, err)
		}
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	if err := cli.addAdmin("Head", "head@shule.test", "0ld-pwd"); err != nil {
		t.Fatalf("addAdmin() failed, %v", err)
	}

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "head@shule.test"}, wantErr: errHelp},
		{name: "unknown email", args: []string{"resetpassword", "-email", "lol@shule.test"}, extra: extra{pwd: "lol"}, wantErr: auth.ErrNoCredential},
		{name: "reset", args: []string{"resetpassword", "-email", "head@shule.test"}, extra: extra{pwd: "n3w-pwd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				if _, err = cli.provider.SignIn(context.Background(), "head@shule.test", "n3w-pwd"); err != nil {
					t.Errorf("SignIn() with the new password failed, %v", err)
				}
				return
			}
			if tt.wantErr != nil {
				if errors.Cause(err) != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			} else {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}
