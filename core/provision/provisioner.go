package provision

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/shulehub/shule/core"
	"github.com/shulehub/shule/core/auth"
	"github.com/shulehub/shule/core/student"
	"github.com/shulehub/shule/core/teacher"
	"github.com/shulehub/shule/core/user"
)

// Counter sequence names.
const (
	SeqStudents = "students"
	SeqTeachers = "teachers"
)

// Result reports what a successful provisioning run created.
type Result struct {
	ID         int       `json:"id"`
	User       user.User `json:"user"`
	LoginEmail string    `json:"login_email"`

	// InitialPassword is the deterministic first password derived from role
	// and id; the account holder is expected to change it.
	InitialPassword string `json:"-"`
}

// Provisioner creates teacher and student accounts: one domain record, one
// role record and one credential per run, all addressable by keys derived
// from a store-issued sequential id.
type Provisioner struct {
	users    user.ServiceInterface
	provider auth.Provider
	students student.Repository
	teachers teacher.Repository
	counter  Counter
	mailSvc  core.EmailService
	conf     *core.Config
	logger   core.Logger
}

func NewProvisioner(
	users user.ServiceInterface,
	provider auth.Provider,
	students student.Repository,
	teachers teacher.Repository,
	counter Counter,
	mailSvc core.EmailService,
	conf *core.Config,
	logger core.Logger,
) *Provisioner {
	return &Provisioner{
		users:    users,
		provider: provider,
		students: students,
		teachers: teachers,
		counter:  counter,
		mailSvc:  mailSvc,
		conf:     conf,
		logger:   logger,
	}
}

// LoginEmail derives the provisioned account's login address.
func (p *Provisioner) LoginEmail(role user.Role, id int) string {
	return fmt.Sprintf("%s_%d@%s", role, id, p.conf.AccountDomain)
}

// RecordKey derives the role record's synthetic key.
func RecordKey(role user.Role, id int) string {
	return fmt.Sprintf("%s_%d", role, id)
}

func initialPassword(role user.Role, id int) string {
	return fmt.Sprintf("%s_%d_shule", role, id)
}

// ProvisionTeacher admits a new teacher. Steps: issue id, write the teacher
// record, write the role record, create the credential. Any failure rolls
// the completed steps back.
func (p *Provisioner) ProvisionTeacher(ctx context.Context, nt teacher.NewTeacher) (Result, error) {
	var (
		id  int
		res Result
	)

	saga := NewSaga(p.logger,
		Step{
			Name: "next-id",
			Run: func(ctx context.Context) error {
				var err error
				id, err = p.counter.NextID(ctx, SeqTeachers)
				return err
			},
		},
		Step{
			Name: "domain-record",
			Run: func(ctx context.Context) error {
				_, err := p.teachers.CreateTeacher(ctx, teacher.Teacher{
					ID:    id,
					Name:  nt.Name,
					Email: nt.Email,
					Class: nt.Class,
				})
				return err
			},
			Compensate: func(ctx context.Context) error {
				return p.teachers.DeleteTeachersByID(ctx, id)
			},
		},
		Step{
			Name: "role-record",
			Run: func(ctx context.Context) error {
				usr, err := p.users.Create(ctx, user.NewUser{
					ID:    RecordKey(user.RoleTeacher, id),
					Name:  nt.Name,
					Email: p.LoginEmail(user.RoleTeacher, id),
					Role:  user.RoleTeacher.String(),
				})
				res.User = usr
				return err
			},
			Compensate: func(ctx context.Context) error {
				return p.users.Delete(ctx, RecordKey(user.RoleTeacher, id))
			},
		},
		Step{
			Name: "credential",
			Run: func(ctx context.Context) error {
				_, err := p.provider.CreateAccount(ctx, p.LoginEmail(user.RoleTeacher, id), initialPassword(user.RoleTeacher, id))
				return err
			},
			Compensate: func(ctx context.Context) error {
				return p.provider.DeleteAccount(ctx, p.LoginEmail(user.RoleTeacher, id))
			},
		},
	)

	if err := saga.Execute(ctx); err != nil {
		return Result{}, err
	}

	res.ID = id
	res.LoginEmail = p.LoginEmail(user.RoleTeacher, id)
	res.InitialPassword = initialPassword(user.RoleTeacher, id)
	p.sendCredentials(nt.Email, nt.Name, res)
	return res, nil
}

// ProvisionStudent admits a new student the same way, keyed by a sequential
// registration number.
func (p *Provisioner) ProvisionStudent(ctx context.Context, ns student.NewStudent) (Result, error) {
	var (
		regNo int
		res   Result
	)

	saga := NewSaga(p.logger,
		Step{
			Name: "next-id",
			Run: func(ctx context.Context) error {
				var err error
				regNo, err = p.counter.NextID(ctx, SeqStudents)
				return err
			},
		},
		Step{
			Name: "domain-record",
			Run: func(ctx context.Context) error {
				_, err := p.students.CreateStudent(ctx, student.Student{
					RegNo:         regNo,
					AdmissionDate: ns.AdmissionDate,
					Name:          ns.Name,
					DOB:           ns.DOB,
					Gender:        ns.Gender,
					FatherName:    ns.FatherName,
					Cast:          ns.Cast,
					Occupation:    ns.Occupation,
					Residence:     ns.Residence,
					Class:         ns.Class,
					Email:         ns.Email,
					Remarks:       ns.Remarks,
				})
				return err
			},
			Compensate: func(ctx context.Context) error {
				return p.students.DeleteStudentsByRegNo(ctx, regNo)
			},
		},
		Step{
			Name: "role-record",
			Run: func(ctx context.Context) error {
				usr, err := p.users.Create(ctx, user.NewUser{
					ID:    RecordKey(user.RoleStudent, regNo),
					Name:  ns.Name,
					Email: p.LoginEmail(user.RoleStudent, regNo),
					Role:  user.RoleStudent.String(),
				})
				res.User = usr
				return err
			},
			Compensate: func(ctx context.Context) error {
				return p.users.Delete(ctx, RecordKey(user.RoleStudent, regNo))
			},
		},
		Step{
			Name: "credential",
			Run: func(ctx context.Context) error {
				_, err := p.provider.CreateAccount(ctx, p.LoginEmail(user.RoleStudent, regNo), initialPassword(user.RoleStudent, regNo))
				return err
			},
			Compensate: func(ctx context.Context) error {
				return p.provider.DeleteAccount(ctx, p.LoginEmail(user.RoleStudent, regNo))
			},
		},
	)

	if err := saga.Execute(ctx); err != nil {
		return Result{}, err
	}

	res.ID = regNo
	res.LoginEmail = p.LoginEmail(user.RoleStudent, regNo)
	res.InitialPassword = initialPassword(user.RoleStudent, regNo)
	p.sendCredentials(ns.Email, ns.Name, res)
	return res, nil
}

// sendCredentials hands the generated login out to the personal address
// collected on the admission form, when there is one.
func (p *Provisioner) sendCredentials(personalEmail, name string, res Result) {
	if personalEmail == "" || p.mailSvc == nil {
		return
	}
	p.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: name, Address: personalEmail}},
		Subject: "Your account is ready",
		BodyStr: fmt.Sprintf(
			"Hello %s,\n\nYour account has been created.\n\nLogin email: %s\nInitial password: %s\n\nPlease change your password after your first login.\n",
			name, res.LoginEmail, res.InitialPassword,
		),
	})
}
