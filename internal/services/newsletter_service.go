package services

import (
	"context"
	"errors"

	"joyeria/internal/domain"
	applog "joyeria/internal/log"
	"joyeria/internal/mail"
	"joyeria/internal/repos"
	"joyeria/internal/validate"
)

var ErrInvalidEmail = errors.New("invalid email")

type NewsletterService struct {
	Repo *repos.NewsletterRepo
	Mail mail.Sender
}

func NewNewsletterService(r *repos.NewsletterRepo, m mail.Sender) *NewsletterService {
	if m == nil {
		m = mail.LogSender{}
	}
	return &NewsletterService{Repo: r, Mail: m}
}

// Subscribe is idempotent; the welcome message only goes out the first time.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) (bool, error) {
	email, ok := validate.Email(email)
	if !ok {
		return false, ErrInvalidEmail
	}
	created, err := s.Repo.Subscribe(ctx, email)
	if err != nil || !created {
		return false, err
	}
	if err := s.Mail.Send(ctx, mail.Welcome(email)); err != nil {
		applog.Failure("newsletter.mail.fail", err, map[string]any{"email": email})
	}
	return true, nil
}

func (s *NewsletterService) List(ctx context.Context) ([]domain.Subscriber, error) {
	return s.Repo.List(ctx)
}
