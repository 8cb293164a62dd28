package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/email"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
	"github.com/jwalitptl/telehealth-api/pkg/circuitbreaker"
	"github.com/jwalitptl/telehealth-api/pkg/messaging"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
)

// Notifier turns domain events into emails and, when an SMS sender is
// configured, text messages to the people involved.
type Notifier struct {
	users   repository.UserRepository
	mailer  email.Service
	sms     SMSSender
	metrics *metrics.Metrics

	emailBreaker *circuitbreaker.CircuitBreaker
	smsBreaker   *circuitbreaker.CircuitBreaker
}

// NewNotifier builds a notifier. sms may be nil to disable text messages.
func NewNotifier(users repository.UserRepository, mailer email.Service, sms SMSSender, m *metrics.Metrics) *Notifier {
	return &Notifier{
		users:   users,
		mailer:  mailer,
		sms:     sms,
		metrics: m,
		emailBreaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "smtp",
			MaxFailures: 5,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
		}),
		smsBreaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "sms",
			MaxFailures: 5,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
		}),
	}
}

// Bodies take the other party's name and the appointment date and time.
var appointmentTemplates = map[string]struct{ subject, body string }{
	model.EventAppointmentBooked:      {"Appointment confirmed", "Your appointment with %s is booked for %s."},
	model.EventAppointmentCancelled:   {"Appointment cancelled", "Your appointment with %s on %s has been cancelled."},
	model.EventAppointmentRescheduled: {"Appointment rescheduled", "Your appointment with %s has been moved to %s."},
	model.EventAppointmentCompleted:   {"Consultation completed", "Your consultation with %s on %s is complete."},
}

type notice struct {
	to      *model.User
	subject string
	body    string
}

// Handle is a messaging.Handler.
func (n *Notifier) Handle(ctx context.Context, msg *messaging.Message) error {
	notices, err := n.compose(ctx, msg)
	if err != nil {
		return err
	}

	var errs []error
	for _, nt := range notices {
		errs = append(errs, n.deliver(ctx, nt)...)
	}
	return errors.Join(errs...)
}

func (n *Notifier) compose(ctx context.Context, msg *messaging.Message) ([]notice, error) {
	if msg.Type == model.EventDoctorApproved {
		var ev model.DoctorEvent
		if err := msg.DecodePayload(&ev); err != nil {
			return nil, fmt.Errorf("failed to decode %s payload: %w", msg.Type, err)
		}
		doctor, err := n.user(ctx, ev.DoctorID)
		if err != nil {
			return nil, err
		}
		return []notice{{
			to:      doctor,
			subject: "Your account has been approved",
			body: fmt.Sprintf("Hello Dr. %s,\n\nYour doctor account has been approved. "+
				"Patients can now find you and book appointments.", doctor.LastName),
		}}, nil
	}

	tpl, ok := appointmentTemplates[msg.Type]
	if !ok {
		log.Debug().Str("type", msg.Type).Msg("no notification for event type")
		return nil, nil
	}

	var ev model.AppointmentEvent
	if err := msg.DecodePayload(&ev); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", msg.Type, err)
	}
	patient, err := n.user(ctx, ev.PatientID)
	if err != nil {
		return nil, err
	}
	doctor, err := n.user(ctx, ev.DoctorID)
	if err != nil {
		return nil, err
	}

	when := fmt.Sprintf("%s at %s", ev.AppointmentDate, ev.StartTime)

	patientBody := fmt.Sprintf(tpl.body, "Dr. "+doctor.FullName(), when)
	doctorBody := fmt.Sprintf(tpl.body, patient.FullName(), when)
	if ev.Reason != nil && *ev.Reason != "" {
		patientBody += "\nReason: " + *ev.Reason
		doctorBody += "\nReason: " + *ev.Reason
	}

	return []notice{
		{to: patient, subject: tpl.subject, body: patientBody},
		{to: doctor, subject: tpl.subject, body: doctorBody},
	}, nil
}

func (n *Notifier) user(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := n.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient %s: %w", id, err)
	}
	return u, nil
}

func (n *Notifier) deliver(ctx context.Context, nt notice) []error {
	var errs []error

	err := n.emailBreaker.Execute(func() error {
		return n.mailer.Send(ctx, nt.to.Email, nt.subject, nt.body)
	})
	if err != nil {
		n.metrics.NotificationsSent.WithLabelValues("email", "error").Inc()
		errs = append(errs, err)
	} else {
		n.metrics.NotificationsSent.WithLabelValues("email", "success").Inc()
	}

	if n.sms != nil && nt.to.Phone != nil && *nt.to.Phone != "" {
		err := n.smsBreaker.Execute(func() error {
			return n.sms.SendSMS(ctx, *nt.to.Phone, nt.subject+": "+nt.body)
		})
		if err != nil {
			n.metrics.NotificationsSent.WithLabelValues("sms", "error").Inc()
			errs = append(errs, err)
		} else {
			n.metrics.NotificationsSent.WithLabelValues("sms", "success").Inc()
		}
	}
	return errs
}
