package utils

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer delivers transactional mail.
type Mailer interface {
	Send(to, subject, textBody, htmlBody string) error
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends mail through gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, textBody, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}
	return m.dialer.DialAndSend(msg)
}

// NopMailer drops every message. Used when no SMTP host is configured.
type NopMailer struct{}

func (NopMailer) Send(to, subject, textBody, htmlBody string) error { return nil }

const mailLayout = `
	<!DOCTYPE html>
	<html>
	<head>
		<title>%[1]s</title>
		<style>
			body { font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0; }
			.container { background-color: #ffffff; margin: 20px auto; padding: 20px; border-radius: 8px; max-width: 600px; }
			h1 { color: #333333; }
			p { color: #666666; }
			.code { font-weight: bold; color: #007bff; word-break: break-all; }
		</style>
	</head>
	<body>
		<div class="container">
			<h1>%[1]s</h1>
			<p>%[2]s</p>
			<p class="code">%[3]s</p>
			<p>%[4]s</p>
		</div>
	</body>
	</html>
	`

// SendResetCodeEmail mails a password reset code.
func SendResetCodeEmail(m Mailer, email, code string) error {
	const subject = "Password Reset Code"
	html := fmt.Sprintf(mailLayout, subject, "Your password reset code is:", code,
		"If you did not request a password reset, please ignore this email.")
	return m.Send(email, subject, "Your password reset code is: "+code, html)
}

// SendDoctorInviteEmail mails a doctor-signup token to a prospective doctor.
func SendDoctorInviteEmail(m Mailer, email, token string) error {
	const subject = "Doctor Registration Invitation"
	html := fmt.Sprintf(mailLayout, subject, "Use this one-time token to create your doctor account:", token,
		"The token can be used only once.")
	return m.Send(email, subject, "Your doctor registration token is: "+token, html)
}
