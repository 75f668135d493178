package mailer

import (
	"bytes"
	"fmt"
	"gala/src/lib"
	"gala/src/models"
	"os"
	"text/template"
)

// NewMailerMessage delivers a message through the configured SMTP relay.
// Delivery failures are the caller's to handle; nothing here retries.
func NewMailerMessage(input *lib.SendMailInput) error {
	if input.From == "" {
		input.From = os.Getenv("SMTP_FROM")
	}
	if err := lib.SendMail(input); err != nil {
		return fmt.Errorf("error sending mail: %s", err.Error())
	}
	return nil
}

// RenderTemplate expands an email template body with per-guest data.
func RenderTemplate(tpl *models.EmailTemplate, data map[string]any) (string, error) {
	t, err := template.New(tpl.Slug).Parse(tpl.Body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
