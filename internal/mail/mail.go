package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

const resetSubject = "Reset your password"

const resetTemplate = `<html>
<body>
<p>Hi %s,</p>
<p>We received a request to reset your password. Follow the link below
to choose a new one. The link is valid for a short time only.</p>
<p><a href="%s">Reset password</a></p>
<p>If you did not request this, you can ignore this email.</p>
</body>
</html>`

type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *Mailer) SendResetPassword(toEmail, name, resetLink string) error {
	body := fmt.Sprintf(resetTemplate, name, resetLink)
	return m.send(toEmail, resetSubject, body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	// smtp.SendMail upgrades to STARTTLS when the server offers it.
	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(b.String()))
}
