package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/shulehub/shule/apps/api/echo"
	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/fee"
	"github.com/shulehub/shule/core/marks"
	"github.com/shulehub/shule/core/provision"
	"github.com/shulehub/shule/core/school"
	"github.com/shulehub/shule/core/student"
	"github.com/shulehub/shule/core/teacher"
	"github.com/shulehub/shule/core/user"
	emailsvc "github.com/shulehub/shule/services/email"
	logsvc "github.com/shulehub/shule/services/logger"
	"github.com/shulehub/shule/storage/document/inmem"
	"github.com/shulehub/shule/storage/document/mongodb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up storage
	var (
		userRepo    user.Repository
		credRepo    auth.CredentialRepository
		studentRepo student.Repository
		teacherRepo teacher.Repository
		marksRepo   marks.Repository
		feeRepo     fee.Repository
		schoolRepo  school.Repository
		counter     provision.Counter
	)
	if conf.Debug {
		db := inmem.NewDB()
		userRepo = inmem.NewUserRepository(db)
		credRepo = inmem.NewCredentialRepository(db)
		studentRepo = inmem.NewStudentRepository(db)
		teacherRepo = inmem.NewTeacherRepository(db)
		marksRepo = inmem.NewMarksRepository(db)
		feeRepo = inmem.NewFeeRepository(db)
		schoolRepo = inmem.NewSchoolRepository(db)
		counter = inmem.NewCounterRepository(db)
	} else {
		db, err := mongodb.Open(context.Background(), conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(context.Background()); err != nil {
				logger.Error("closing database", err)
			}
		}()
		if err = db.EnsureIndexes(context.Background()); err != nil {
			logger.Fatal(fmt.Sprintf("creating indexes: %v", err), err)
		}
		userRepo = mongodb.NewUserRepository(db)
		credRepo = mongodb.NewCredentialRepository(db)
		studentRepo = mongodb.NewStudentRepository(db)
		teacherRepo = mongodb.NewTeacherRepository(db)
		marksRepo = mongodb.NewMarksRepository(db)
		feeRepo = mongodb.NewFeeRepository(db)
		schoolRepo = mongodb.NewSchoolRepository(db)
		counter = db
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	provider := auth.NewLocalProvider(credRepo, logger)
	usrSvc := user.NewService(userRepo, logger)
	studentSvc := student.NewService(studentRepo)
	teacherSvc := teacher.NewService(teacherRepo)
	marksSvc := marks.NewService(marksRepo)
	feeSvc := fee.NewService(feeRepo)
	schoolSvc := school.NewService(schoolRepo)
	provisioner := provision.NewProvisioner(usrSvc, provider, studentRepo, teacherRepo, counter, mailSvc, conf, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			Provider:    provider,
			UserSvc:     usrSvc,
			StudentSvc:  studentSvc,
			TeacherSvc:  teacherSvc,
			MarksSvc:    marksSvc,
			FeeSvc:      feeSvc,
			SchoolSvc:   schoolSvc,
			Provisioner: provisioner,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func newTranslator() ut.Translator {
	lang := en.New()
	uni := ut.New(lang, lang)
	translator, _ := uni.GetTranslator("en")
	return translator
}
