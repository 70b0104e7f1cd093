package notification

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"
)

const signature = "\nThe PanAguas team"

var (
	ErrMissingRecipientEmail = errors.New("recipient has no email address")
	ErrUnknownKind           = errors.New("unknown notification kind")
)

// SMTPSettings addresses the mail server.
type SMTPSettings struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// EmailSink sends notifications as plain-text emails.
type EmailSink struct {
	settings SMTPSettings
	location *time.Location
	send     func(e *email.Email) error
}

// EmailOption configures an EmailSink.
type EmailOption func(*EmailSink)

// WithLocation sets the time zone clock times are written in. The default is UTC.
func WithLocation(location *time.Location) EmailOption {
	return func(s *EmailSink) {
		if location != nil {
			s.location = location
		}
	}
}

// NewEmailSink creates an EmailSink. Without a username no SMTP authentication is used.
func NewEmailSink(settings SMTPSettings, opts ...EmailOption) *EmailSink {
	sink := &EmailSink{settings: settings, location: time.UTC}

	for _, opt := range opts {
		opt(sink)
	}

	addr := net.JoinHostPort(settings.Host, settings.Port)
	var auth smtp.Auth
	if settings.Username != "" {
		auth = smtp.PlainAuth("", settings.Username, settings.Password, settings.Host)
	}

	sink.send = func(e *email.Email) error {
		return e.Send(addr, auth)
	}

	return sink
}

// Send composes and sends the email for n.
func (s *EmailSink) Send(ctx context.Context, n Notification) error {
	e, err := s.Compose(n)
	if err != nil {
		return err
	}

	if err = ctx.Err(); err != nil {
		return err
	}

	if err = s.send(e); err != nil {
		return fmt.Errorf("send %s email: %w", n.Kind, err)
	}

	return nil
}

// Compose builds the email for n without sending it.
func (s *EmailSink) Compose(n Notification) (*email.Email, error) {
	if n.Recipient.Email == "" {
		return nil, ErrMissingRecipientEmail
	}

	subject, body, err := render(n, s.location)
	if err != nil {
		return nil, err
	}

	e := email.NewEmail()
	e.From = s.settings.From
	e.To = []string{n.Recipient.Email}
	e.Subject = subject
	e.Text = []byte(fmt.Sprintf("Hello %s,\n\n%s\n%s", displayName(n.Recipient), body, signature))

	return e, nil
}

func render(n Notification, location *time.Location) (subject string, body string, err error) {
	switch n.Kind {
	case KindWelcome:
		return "Welcome to PanAguas",
			"Thanks for signing up. You can now borrow umbrellas at any station on campus.\n" +
				"Check the station map and your account status on the portal.\n", nil

	case KindLoanOpened:
		return "PanAguas loan confirmation",
			fmt.Sprintf("You took an umbrella at station %s.\n\nLoan ID: %s\nYou have %d minutes, please return it by %s to avoid fines.\n",
				n.Details.StationID, n.LoanID, n.Details.AllowedMinutes, n.Details.DueAt.In(location).Format("15:04")), nil

	case KindLoanClosed:
		var b strings.Builder
		fmt.Fprintf(&b, "You returned your umbrella (loan ID: %s) at station %s.\n\n", n.LoanID, n.Details.StationID)
		if n.Details.FineAmount > 0 {
			fmt.Fprintf(&b, "A late-return fine of $%d was added to your account.\n", n.Details.FineAmount)
			return "PanAguas return and fine notice", b.String(), nil
		}

		b.WriteString("Thanks for returning it on time!\n")

		return "PanAguas return confirmation", b.String(), nil

	case KindFineApplied:
		return "PanAguas fine applied",
			fmt.Sprintf("Your loan %s was returned late. A fine of $%d is due before your next loan.\n",
				n.LoanID, n.Details.FineAmount), nil

	case KindDueSoon:
		return fmt.Sprintf("PanAguas: your loan is due in %d minutes", n.Details.RemainingMinutes),
			fmt.Sprintf("Your loan %s has about %d minutes of free time left.\nReturn it at any station to avoid fines.\n",
				n.LoanID, n.Details.RemainingMinutes), nil

	case KindFineStarted:
		return "PanAguas: late fine started",
			fmt.Sprintf("Your loan %s is past its free time and a late fine is accruing.\nReturn the umbrella as soon as possible.\n",
				n.LoanID), nil

	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnknownKind, n.Kind)
	}
}

func displayName(r Recipient) string {
	if r.Name == "" {
		return "there"
	}

	return r.Name
}
