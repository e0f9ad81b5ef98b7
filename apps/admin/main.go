package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/provision"
	"github.com/shulehub/shule/core/student"
	"github.com/shulehub/shule/core/teacher"
	"github.com/shulehub/shule/core/user"
	emailsvc "github.com/shulehub/shule/services/email"
	logsvc "github.com/shulehub/shule/services/logger"
	"github.com/shulehub/shule/storage/document/inmem"
	"github.com/shulehub/shule/storage/document/mongodb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	appLogger := logsvc.NewStdLogger(logger)

	// set up storage
	var (
		userRepo    user.Repository
		credRepo    auth.CredentialRepository
		studentRepo student.Repository
		teacherRepo teacher.Repository
		counter     provision.Counter
	)
	if conf.Debug {
		db := inmem.NewDB()
		userRepo = inmem.NewUserRepository(db)
		credRepo = inmem.NewCredentialRepository(db)
		studentRepo = inmem.NewStudentRepository(db)
		teacherRepo = inmem.NewTeacherRepository(db)
		counter = inmem.NewCounterRepository(db)
	} else {
		db, err := mongodb.Open(context.Background(), conf)
		errAndDie(err)
		defer func() { _ = db.Close(context.Background()) }()
		errAndDie(db.EnsureIndexes(context.Background()))
		userRepo = mongodb.NewUserRepository(db)
		credRepo = mongodb.NewCredentialRepository(db)
		studentRepo = mongodb.NewStudentRepository(db)
		teacherRepo = mongodb.NewTeacherRepository(db)
		counter = db
	}

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	provider := auth.NewLocalProvider(credRepo, appLogger)
	usrSvc := user.NewService(userRepo, appLogger)
	provisioner := provision.NewProvisioner(
		usrSvc, provider, studentRepo, teacherRepo, counter,
		emailsvc.NewConsoleService(conf), conf, appLogger,
	)

	// start CLI
	cli := commandLine{
		usrSvc:      usrSvc,
		provider:    provider,
		provisioner: provisioner,
		counter:     counter,
		validate:    validate,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func newTranslator() ut.Translator {
	lang := en.New()
	uni := ut.New(lang, lang)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
