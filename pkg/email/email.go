package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"iisa-recruitment-backend/config"
	"iisa-recruitment-backend/internal/domain"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService sends applicant notifications via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	editURL   string
	location  *time.Location
	send      SendFunc
}

// ConfirmationData holds the data for registration confirmation emails
type ConfirmationData struct {
	FirstName    string
	EditDeadline string
	EditURL      string
}

func NewEmailService(cfg *config.Config) *EmailService {
	loc := cfg.EditWindowLocation
	if loc == nil {
		loc = time.UTC
	}
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		editURL:   cfg.FrontendURL,
		location:  loc,
		send:      smtp.SendMail,
	}
}

// WithSender replaces the SMTP transport.
func (s *EmailService) WithSender(send SendFunc) *EmailService {
	s.send = send
	return s
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Registration received</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1E3A5F; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .deadline { background: white; padding: 15px; border-left: 4px solid #1E3A5F; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Thank you for registering, {{.FirstName}}</h1>
        </div>
        <div class="content">
            <p>Your application to the Israeli Space Agency candidate pool was received.</p>
            <div class="deadline">
                You can update your details from the same browser until <strong>{{.EditDeadline}}</strong>.
            </div>
            <p><a href="{{.EditURL}}">Open the registration page</a></p>
        </div>
        <div class="footer">
            <p>This message was sent automatically. Please do not reply.</p>
        </div>
    </div>
</body>
</html>`))

// BuildConfirmation renders the full MIME message for c.
func (s *EmailService) BuildConfirmation(c domain.Candidate, editDeadline time.Time) ([]byte, error) {
	data := ConfirmationData{
		FirstName:    firstName(c.FullName),
		EditDeadline: editDeadline.In(s.location).Format("02/01/2006 15:04"),
		EditURL:      s.editURL,
	}

	var body bytes.Buffer
	if err := confirmationTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		c.Email,
		"IISA registration received",
		body.String(),
	))
	return msg, nil
}

// SendRegistrationConfirmation mails the applicant their edit deadline.
func (s *EmailService) SendRegistrationConfirmation(ctx context.Context, c domain.Candidate, editDeadline time.Time) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email service not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := s.BuildConfirmation(c, editDeadline)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{c.Email}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}

func firstName(fullName string) string {
	for i, r := range fullName {
		if r == ' ' {
			return fullName[:i]
		}
	}
	return fullName
}
