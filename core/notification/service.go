package notification

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/rollcall/core"
	"github.com/trezcool/rollcall/core/attendance"
)

const (
	presentTemplate = "attendance_present"
	alertTemplate   = "attendance_alert"
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
	}

	Options struct {
		// RecordSkipped persists a "skipped" notification when no contact is found.
		RecordSkipped bool
		// Location is the zone marking times are rendered in; nil means UTC.
		Location *time.Location
	}

	// Dispatcher notifies a student's guardian whenever attendance is marked.
	Dispatcher struct {
		repo      Repository
		mailer    core.EmailService
		templates *core.EmailTemplates
		lookups   []ContactLookup // ranked: the first contact found wins
		logger    core.Logger
		opts      Options
		now       func() time.Time
	}
)

var _ attendance.Notifier = (*Dispatcher)(nil)

func NewDispatcher(
	repo Repository,
	mailer core.EmailService,
	templates *core.EmailTemplates,
	logger core.Logger,
	opts Options,
	lookups ...ContactLookup,
) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		mailer:    mailer,
		templates: templates,
		lookups:   lookups,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

func (d *Dispatcher) NotifyMarked(ctx context.Context, rec attendance.Record) error {
	_, err := d.Notify(ctx, rec)
	return err
}

// Notify sends the guardian a confirmation (present) or an alert (absent, late) for rec
// and logs the attempt. Delivery failures are recorded, not returned; only a failure
// to record the attempt is.
func (d *Dispatcher) Notify(ctx context.Context, rec attendance.Record) (Outcome, error) {
	contact, err := d.lookupContact(ctx, rec.StudentID)
	if contact == nil {
		if err != nil {
			d.logger.Warn(fmt.Sprintf("looking up guardian contact: %v", err), err)
		}
		if !d.opts.RecordSkipped {
			return OutcomeSkipped, nil
		}
		n := d.newNotification(rec, Contact{}, nil)
		n.Outcome = OutcomeSkipped
		n.Error = "no guardian contact found"
		if _, err = d.repo.CreateNotification(ctx, n); err != nil {
			return OutcomeSkipped, errors.Wrap(err, "recording skipped notification")
		}
		return OutcomeSkipped, nil
	}

	msg := d.compose(rec, *contact)
	n := d.newNotification(rec, *contact, msg)
	if err = d.send(ctx, msg); err != nil {
		n.Outcome = OutcomeFailed
		n.Error = err.Error()
		d.logger.Warn(fmt.Sprintf("sending attendance notification: %v", err), err, map[string]interface{}{"attendance_id": rec.ID})
	} else {
		n.Outcome = OutcomeSent
	}
	n.Body = msg.TextContent

	if _, err = d.repo.CreateNotification(ctx, n); err != nil {
		return n.Outcome, errors.Wrap(err, "recording notification")
	}
	return n.Outcome, nil
}

func (d *Dispatcher) lookupContact(ctx context.Context, studentID string) (*Contact, error) {
	var lookupErr error
	for _, lookup := range d.lookups {
		contact, err := lookup.LookupContact(ctx, studentID)
		if err != nil {
			lookupErr = err
			continue
		}
		if contact != nil && contact.Email != "" {
			return contact, nil
		}
	}
	return nil, lookupErr
}

func (d *Dispatcher) compose(rec attendance.Record, contact Contact) *core.EmailMessage {
	studentName := contact.StudentName
	if studentName == "" {
		studentName = rec.StudentID
	}

	msg := &core.EmailMessage{
		To: []mail.Address{{Name: contact.GuardianName, Address: contact.Email}},
		TemplateData: templateData{
			GuardianName: contact.GuardianName,
			StudentName:  studentName,
			Subject:      rec.Subject,
			Grade:        rec.Grade,
			Status:       string(rec.Status),
			Date:         core.FormatDate(rec.Date),
			MarkedAt:     rec.MarkedAt.In(d.location()).Format("15:04"),
		},
	}
	if rec.Status == attendance.StatusPresent {
		msg.TemplateName = presentTemplate
		msg.Subject = fmt.Sprintf("Attendance confirmation: %s", studentName)
	} else {
		msg.TemplateName = alertTemplate
		msg.Subject = fmt.Sprintf("Attendance alert: %s was marked %s", studentName, rec.Status)
	}
	return msg
}

func (d *Dispatcher) location() *time.Location {
	if d.opts.Location == nil {
		return time.UTC
	}
	return d.opts.Location
}

func (d *Dispatcher) send(ctx context.Context, msg *core.EmailMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("email service panic: %v", r)
		}
	}()

	if d.templates != nil {
		if err = d.templates.Render(msg); err != nil {
			return errors.Wrap(err, "rendering email")
		}
	}
	return d.mailer.SendMessage(ctx, msg)
}

func (d *Dispatcher) newNotification(rec attendance.Record, contact Contact, msg *core.EmailMessage) Notification {
	n := Notification{
		Recipient:     contact.Email,
		RecipientName: contact.GuardianName,
		Channel:       ChannelEmail,
		Outcome:       OutcomePending,
		StudentID:     rec.StudentID,
		ClassID:       rec.ClassID,
		AttendanceID:  rec.ID,
		CreatedAt:     d.now().UTC(),
	}
	if msg != nil {
		n.Subject = msg.Subject
	}
	return n
}
