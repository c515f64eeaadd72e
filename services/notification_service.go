package services

import (
	"context"
	"fmt"

	"github.com/kendall-kelly/gig-marketplace-api/config"
	"github.com/kendall-kelly/gig-marketplace-api/events"
	"github.com/kendall-kelly/gig-marketplace-api/repositories"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a single email
type Mailer interface {
	Send(to, subject, body string) error
}

// GomailMailer sends mail over SMTP
type GomailMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewGomailMailer(cfg *config.Config) *GomailMailer {
	return &GomailMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

func (m *GomailMailer) newMessage(to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return msg
}

func (m *GomailMailer) Send(to, subject, body string) error {
	return m.dialer.DialAndSend(m.newMessage(to, subject, body))
}

// NotificationService tells both parties about an allocation. It runs as an
// events.Handler, after the allocation has been committed.
type NotificationService struct {
	accounts repositories.AccountRepository
	gigs     repositories.GigRepository
	mailer   Mailer
	log      *zap.Logger
}

func NewNotificationService(accounts repositories.AccountRepository, gigs repositories.GigRepository, mailer Mailer, log *zap.Logger) *NotificationService {
	return &NotificationService{accounts: accounts, gigs: gigs, mailer: mailer, log: orNop(log)}
}

// HandleGigAllocated emails the provider and the client. Both sends are
// attempted; the first failure is returned.
func (s *NotificationService) HandleGigAllocated(ctx context.Context, event events.GigAllocated) error {
	gig, err := s.gigs.FindByID(ctx, event.GigID)
	if err != nil {
		return fmt.Errorf("load gig %d: %w", event.GigID, err)
	}
	provider, err := s.accounts.FindByID(ctx, event.ProviderID)
	if err != nil {
		return fmt.Errorf("load provider %d: %w", event.ProviderID, err)
	}
	client, err := s.accounts.FindByID(ctx, event.ClientID)
	if err != nil {
		return fmt.Errorf("load client %d: %w", event.ClientID, err)
	}

	var firstErr error
	send := func(to, subject, body string) {
		if err := s.mailer.Send(to, subject, body); err != nil {
			s.log.Warn("allocation email failed", zap.Uint("gig_id", gig.ID), zap.String("to", to), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	send(provider.Email,
		fmt.Sprintf("New gig: %s", gig.Title),
		fmt.Sprintf("<p>Hi %s,</p><p>You have been allocated to <strong>%s</strong>, starting %s.</p>",
			provider.Name, gig.Title, gig.StartDate.Format(dateLayout)))
	send(client.Email,
		fmt.Sprintf("A provider is booked for %s", gig.Title),
		fmt.Sprintf("<p>Hi %s,</p><p>%s will take care of <strong>%s</strong>.</p>",
			client.Name, provider.Name, gig.Title))

	if firstErr == nil {
		s.log.Info("allocation emails sent", zap.Uint("gig_id", gig.ID))
	}
	return firstErr
}
