// Package mail renders and stores the messages the user receives in game.
package mail

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"esports-sim/internal/domain"
	"esports-sim/internal/repository"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const sendWorkers = 4

// Message is an email before rendering.
type Message struct {
	Template string
	From     string
	Data     map[string]any
}

type Mailer struct {
	store  *repository.Store
	tmpl   *template.Template
	logger zerolog.Logger
}

func New(store *repository.Store, logger zerolog.Logger) *Mailer {
	return &Mailer{
		store:  store,
		tmpl:   template.Must(template.New("mail").Option("missingkey=error").Parse(templates)),
		logger: logger,
	}
}

// Render produces the subject and body of a message.
func (m *Mailer) Render(msg Message) (string, string, error) {
	var subject, body strings.Builder
	if err := m.tmpl.ExecuteTemplate(&subject, msg.Template+".subject", msg.Data); err != nil {
		return "", "", fmt.Errorf("failed to render %s subject: %w", msg.Template, err)
	}
	if err := m.tmpl.ExecuteTemplate(&body, msg.Template+".body", msg.Data); err != nil {
		return "", "", fmt.Errorf("failed to render %s body: %w", msg.Template, err)
	}
	return subject.String(), body.String(), nil
}

func (m *Mailer) build(msg Message, date time.Time, delivered bool) (*domain.Email, error) {
	subject, body, err := m.Render(msg)
	if err != nil {
		return nil, err
	}
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate email id: %w", err)
	}
	return &domain.Email{
		ID:        id,
		Sender:    msg.From,
		Subject:   subject,
		Body:      body,
		Date:      date,
		Delivered: delivered,
	}, nil
}

// Send delivers a message dated today.
func (m *Mailer) Send(ctx context.Context, date time.Time, msg Message) (*domain.Email, error) {
	e, err := m.build(msg, date, true)
	if err != nil {
		return nil, err
	}
	if err := m.store.CreateEmail(ctx, e); err != nil {
		return nil, err
	}
	m.logger.Info().Str("email_id", e.ID).Str("subject", e.Subject).Msg("email delivered")
	return e, nil
}

// Schedule stores a message to be delivered on date by an EMAIL_SEND entry.
func (m *Mailer) Schedule(ctx context.Context, date time.Time, msg Message) (*domain.Email, error) {
	e, err := m.build(msg, date, false)
	if err != nil {
		return nil, err
	}
	err = m.store.InTx(ctx, func(ctx context.Context) error {
		if err := m.store.CreateEmail(ctx, e); err != nil {
			return err
		}
		entry := domain.NewEntry(date, domain.CalendarEmailSend, domain.EmailPayload{EmailID: e.ID})
		return m.store.Schedule(ctx, &entry)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Deliver marks a scheduled email as delivered. Unknown ids are ignored.
func (m *Mailer) Deliver(ctx context.Context, id string) error {
	e, err := m.store.GetEmail(ctx, id)
	if err != nil {
		return err
	}
	if e.Delivered {
		return nil
	}
	if err := m.store.MarkDelivered(ctx, id); err != nil {
		return fmt.Errorf("failed to deliver email %s: %w", id, err)
	}
	m.logger.Info().Str("email_id", id).Str("subject", e.Subject).Msg("email delivered")
	return nil
}

// SendMany renders and delivers messages concurrently.
func (m *Mailer) SendMany(ctx context.Context, date time.Time, msgs []Message) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(sendWorkers)
	for _, msg := range msgs {
		g.Go(func() error {
			_, err := m.Send(gCtx, date, msg)
			return err
		})
	}
	return g.Wait()
}
