// Package container wires the services shared by the api and admin apps.
package container

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
	"github.com/trezcool/rollcall/core/notification"
	"github.com/trezcool/rollcall/core/payment"
	"github.com/trezcool/rollcall/core/report"
	"github.com/trezcool/rollcall/core/school"
	appfs "github.com/trezcool/rollcall/fs"
	emailsvc "github.com/trezcool/rollcall/services/email"
	"github.com/trezcool/rollcall/storage/database"
	dummydb "github.com/trezcool/rollcall/storage/database/dummy"
	sqlxrepos "github.com/trezcool/rollcall/storage/database/sqlx"
)

type (
	Repositories struct {
		School       school.Repository
		Attendance   attendance.Repository
		Notification notification.Repository
		Payment      payment.Repository
	}

	Container struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
		Mailer     core.EmailService
		Templates  *core.EmailTemplates

		DB    *sqlx.DB    // postgres engine
		MemDB *dummydb.DB // memory engine
		Repos Repositories

		SchoolSvc     *school.Service
		AttendanceSvc *attendance.Service
		PaymentSvc    *payment.Service
		Dispatcher    *notification.Dispatcher
		ReportBuilder *report.Builder
	}
)

// New opens the storage selected by conf.Database.Engine and wires every service on top of it.
// With migrate set, the postgres database is created if needed and migrated.
func New(ctx context.Context, conf *core.Config, logger core.Logger, migrate bool) (*Container, error) {
	c := &Container{Conf: conf, Logger: logger}

	if conf.Database.IsMemory() {
		memDB, err := dummydb.Open()
		if err != nil {
			return nil, errors.Wrap(err, "opening memory database")
		}
		c.MemDB = memDB
		c.Repos = MemoryRepositories(memDB)
	} else {
		db, err := openDB(ctx, conf, migrate)
		if err != nil {
			return nil, errors.Wrap(err, "setting up database")
		}
		c.DB = db
		c.Repos = Repositories{
			School:       sqlxrepos.NewSchoolRepository(db),
			Attendance:   sqlxrepos.NewAttendanceRepository(db),
			Notification: sqlxrepos.NewNotificationRepository(db),
			Payment:      sqlxrepos.NewPaymentRepository(db),
		}
	}

	var mailer core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailer = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailer = emailsvc.NewSendgridService(conf)
	}

	if err := c.Wire(mailer); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// MemoryRepositories returns the in-memory implementation of every repository.
func MemoryRepositories(db *dummydb.DB) Repositories {
	return Repositories{
		School:       dummydb.NewSchoolRepository(db),
		Attendance:   dummydb.NewAttendanceRepository(db),
		Notification: dummydb.NewNotificationRepository(db),
		Payment:      dummydb.NewPaymentRepository(db),
	}
}

// Wire builds the validator and the services out of c.Repos and mailer.
func (c *Container) Wire(mailer core.EmailService) error {
	templates, err := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, c.Conf)
	if err != nil {
		return errors.Wrap(err, "parsing email templates")
	}
	c.Templates = templates
	c.Mailer = mailer

	loc, err := c.Conf.Notifications.Location()
	if err != nil {
		return errors.Wrap(err, "loading notifications time zone")
	}

	c.Validate = validator.New()
	c.Translator = core.NewTranslator()
	core.InitValidators(c.Validate, c.Translator)
	attendance.InitValidators(c.Validate, c.Translator)

	c.SchoolSvc = school.NewService(c.Repos.School)
	c.PaymentSvc = payment.NewService(c.Repos.Payment)
	c.Dispatcher = notification.NewDispatcher(
		c.Repos.Notification,
		mailer,
		templates,
		c.Logger,
		notification.Options{RecordSkipped: c.Conf.Notifications.RecordSkipped, Location: loc},
		notification.UserContactLookup(c.SchoolSvc),
		notification.StudentContactLookup(c.SchoolSvc),
	)
	c.AttendanceSvc = attendance.NewService(c.Repos.Attendance, c.SchoolSvc, c.Dispatcher, c.Logger)
	c.ReportBuilder = report.NewBuilder(c.SchoolSvc, c.AttendanceSvc, c.PaymentSvc)
	return nil
}

func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func openDB(ctx context.Context, conf *core.Config, migrate bool) (*sqlx.DB, error) {
	if migrate {
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}
	}

	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err = database.Migrate(ctx, db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
