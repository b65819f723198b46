package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/logging"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrCaptcha     = errors.New("recaptcha verification failed")
	ErrUnavailable = errors.New("contact service unavailable")
	ErrDelivery    = errors.New("message delivery failed")
)

// Submission is a contact form post.
type Submission struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	RecaptchaToken string `json:"recaptchaToken"`
}

func (s *Submission) normalize() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Subject = strings.TrimSpace(s.Subject)
	s.Message = strings.TrimSpace(s.Message)

	if s.Name == "" || s.Email == "" || s.Message == "" || s.RecaptchaToken == "" {
		return fmt.Errorf("%w: name, email, message and recaptchaToken are required", ErrValidation)
	}
	if !emailPattern.MatchString(s.Email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	// header injection through the subject line
	if strings.ContainsAny(s.Subject, "\r\n") {
		return fmt.Errorf("%w: invalid subject", ErrValidation)
	}
	return nil
}

type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) (*CaptchaResult, error)
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type Service struct {
	captcha  CaptchaVerifier
	mailer   Mailer
	from     string
	to       string
	minScore float64
	log      *zap.Logger
	now      func() time.Time
}

func NewService(captcha CaptchaVerifier, mailer Mailer, mailCfg config.MailConfig, minScore float64, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	to := mailCfg.ContactEmail
	if to == "" {
		to = mailCfg.User
	}
	return &Service{
		captcha:  captcha,
		mailer:   mailer,
		from:     mailCfg.User,
		to:       to,
		minScore: minScore,
		log:      log,
		now:      time.Now,
	}
}

// Send validates the submission, verifies the captcha and mails it to the
// site owner with Reply-To set to the sender.
func (s *Service) Send(ctx context.Context, sub Submission, remoteIP string) error {
	if err := sub.normalize(); err != nil {
		return err
	}
	log := logging.FromContext(ctx, s.log)

	res, err := s.captcha.Verify(ctx, sub.RecaptchaToken, remoteIP)
	if err != nil {
		log.Error("recaptcha verification error", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !res.Success || res.Score < s.minScore {
		log.Warn("recaptcha rejected submission",
			zap.Bool("success", res.Success), zap.Float64("score", res.Score), zap.Strings("errors", res.ErrorCodes))
		return ErrCaptcha
	}

	text, html, err := render(sub, res.Score, s.now())
	if err != nil {
		return err
	}

	subject := sub.Subject
	if subject == "" {
		subject = "New Contact Form Submission from " + sub.Name
	}

	err = s.mailer.Send(ctx, Message{
		From:    s.from,
		To:      s.to,
		ReplyTo: sub.Email,
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
	if err != nil {
		log.Error("contact mail failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	log.Info("contact message sent", zap.Float64("score", res.Score))
	return nil
}
