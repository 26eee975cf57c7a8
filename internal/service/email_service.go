package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// EmailKind selects the template of a transactional email.
type EmailKind string

const (
	EmailEduVerification      EmailKind = "edu-verification"
	EmailPersonalVerification EmailKind = "personal-verification"
	EmailWelcome              EmailKind = "welcome"
	EmailDualComplete         EmailKind = "dual-verification-complete"
)

var emailSubjects = map[EmailKind]string{
	EmailEduVerification:      "Verify Your Student Email - UniVio",
	EmailPersonalVerification: "Verify Your Personal Email - UniVio",
	EmailWelcome:              "🎓 Welcome to UniVio - Your Transfer Journey Begins!",
	EmailDualComplete:         "✅ Both Emails Verified - UniVio Account Ready!",
}

// IsVerification reports whether the kind carries a code.
func (k EmailKind) IsVerification() bool {
	return k == EmailEduVerification || k == EmailPersonalVerification
}

// EmailRequest describes one email to send.
type EmailRequest struct {
	Kind      EmailKind
	To        string
	Code      string
	FirstName string
	EduEmail  string
	// IdempotencyKey is forwarded to the provider when set.
	IdempotencyKey string
}

// EmailResult is the provider's acknowledgement.
type EmailResult struct {
	MessageID string
}

// EmailService sends transactional emails.
type EmailService interface {
	Send(ctx context.Context, req EmailRequest) (*EmailResult, error)
}

type renderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

// emailComposer validates requests and renders the embedded templates.
type emailComposer struct {
	templates map[EmailKind]*template.Template
	codeTTL   time.Duration
}

func newEmailComposer(codeTTL time.Duration) (*emailComposer, error) {
	if codeTTL <= 0 {
		codeTTL = DefaultVerificationTTL
	}
	c := &emailComposer{templates: make(map[EmailKind]*template.Template, len(emailSubjects)), codeTTL: codeTTL}
	for kind := range emailSubjects {
		tmpl, err := template.ParseFS(emailTemplates, "templates/email/base.html", "templates/email/"+string(kind)+".html")
		if err != nil {
			return nil, fmt.Errorf("parse email template %s: %w", kind, err)
		}
		c.templates[kind] = tmpl
	}
	return c, nil
}

func (c *emailComposer) validate(req EmailRequest) error {
	if _, ok := emailSubjects[req.Kind]; !ok {
		return fmt.Errorf("%w: unknown email kind %q", ErrInvalidEmailRequest, req.Kind)
	}
	if !strings.Contains(req.To, "@") {
		return fmt.Errorf("%w: recipient address is required", ErrInvalidEmailRequest)
	}
	if req.Kind.IsVerification() && len(req.Code) != 6 {
		return fmt.Errorf("%w: a 6 digit code is required", ErrInvalidEmailRequest)
	}
	if !req.Kind.IsVerification() && strings.TrimSpace(req.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", ErrInvalidEmailRequest)
	}
	return nil
}

func (c *emailComposer) render(req EmailRequest) (*renderedEmail, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	subject := emailSubjects[req.Kind]
	minutes := int(c.codeTTL.Minutes())
	data := map[string]interface{}{
		"Subject":          subject,
		"To":               req.To,
		"Code":             req.Code,
		"FirstName":        req.FirstName,
		"EduEmail":         req.EduEmail,
		"ExpiresInMinutes": minutes,
	}

	var buf bytes.Buffer
	if err := c.templates[req.Kind].ExecuteTemplate(&buf, "base.html", data); err != nil {
		return nil, fmt.Errorf("execute email template %s: %w", req.Kind, err)
	}

	var text string
	switch req.Kind {
	case EmailWelcome:
		text = fmt.Sprintf("Welcome to UniVio, %s! Your account has been successfully created and verified.", req.FirstName)
	case EmailDualComplete:
		text = fmt.Sprintf("Great news %s! Both your personal and educational emails have been verified. Your UniVio account is now fully activated.", req.FirstName)
	default:
		text = fmt.Sprintf("Your UniVio verification code is: %s. This code will expire in %d minutes.", req.Code, minutes)
	}

	return &renderedEmail{Subject: subject, HTML: buf.String(), Text: text}, nil
}

// NoopEmailService is used when no provider key is configured. It validates and logs only.
type NoopEmailService struct {
	composer *emailComposer
	log      *zap.Logger
}

func NewNoopEmailService(codeTTL time.Duration, log *zap.Logger) (*NoopEmailService, error) {
	composer, err := newEmailComposer(codeTTL)
	if err != nil {
		return nil, err
	}
	return &NoopEmailService{composer: composer, log: log.Named("email")}, nil
}

func (s *NoopEmailService) Send(ctx context.Context, req EmailRequest) (*EmailResult, error) {
	if err := s.composer.validate(req); err != nil {
		return nil, err
	}
	id := "noop-" + uuid.NewString()
	s.log.Warn("email provider not configured, email not delivered",
		zap.String("kind", string(req.Kind)),
		zap.String("to", req.To),
		zap.String("message_id", id))
	return &EmailResult{MessageID: id}, nil
}

// resendEmails is the part of the Resend client this service calls.
type resendEmails interface {
	SendWithOptions(ctx context.Context, params *resend.SendEmailRequest, options *resend.SendEmailOptions) (*resend.SendEmailResponse, error)
}

// ResendEmailService sends emails via the Resend REST API. Each request is attempted once.
type ResendEmailService struct {
	from     string
	emails   resendEmails
	composer *emailComposer
	log      *zap.Logger
}

func NewResendEmailService(apiKey, from string, codeTTL time.Duration, log *zap.Logger) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	return newResendEmailService(resend.NewClient(apiKey).Emails, from, codeTTL, log)
}

func newResendEmailService(emails resendEmails, from string, codeTTL time.Duration, log *zap.Logger) (*ResendEmailService, error) {
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	composer, err := newEmailComposer(codeTTL)
	if err != nil {
		return nil, err
	}
	return &ResendEmailService{
		from:     from,
		emails:   emails,
		composer: composer,
		log:      log.Named("email"),
	}, nil
}

func (s *ResendEmailService) Send(ctx context.Context, req EmailRequest) (*EmailResult, error) {
	msg, err := s.composer.render(req)
	if err != nil {
		return nil, err
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{req.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	options := &resend.SendEmailOptions{}
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		options.IdempotencyKey = key
	}

	resp, err := s.emails.SendWithOptions(ctx, params, options)
	if err != nil {
		s.log.Error("resend send failed", zap.String("kind", string(req.Kind)), zap.String("to", req.To), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	result := &EmailResult{}
	if resp != nil {
		result.MessageID = resp.Id
	}
	s.log.Info("email sent",
		zap.String("kind", string(req.Kind)),
		zap.String("to", req.To),
		zap.String("message_id", result.MessageID))
	return result, nil
}
