package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ContactForm is a submission from the site's contact form.
type ContactForm struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,max=320"`
	Subject string `json:"subject" validate:"required,max=300"`
	Message string `json:"message" validate:"required,max=10000"`
}

var contactTemplate = template.Must(template.New("contact").Parse(`<div style="font-family: 'Space Grotesk', system-ui, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #000000; color: #f4f4f5; padding: 40px 30px; border-radius: 8px;">
    <h2 style="color: #e0ff00; margin-top: 0;">New Contact Form Submission</h2>
    <div style="background-color: #1a1a1a; padding: 20px; border-radius: 6px; margin: 20px 0;">
      <p style="margin: 8px 0;"><strong style="color: #e0ff00;">From:</strong> {{.Name}}</p>
      <p style="margin: 8px 0;"><strong style="color: #e0ff00;">Email:</strong> {{.Email}}</p>
      <p style="margin: 8px 0;"><strong style="color: #e0ff00;">Subject:</strong> {{.Subject}}</p>
    </div>
    <div style="background-color: #1a1a1a; padding: 20px; border-radius: 6px; margin: 20px 0;">
      <p style="margin: 8px 0 12px 0;"><strong style="color: #e0ff00;">Message:</strong></p>
      <p style="line-height: 1.6; white-space: pre-wrap;">{{.Message}}</p>
    </div>
    <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #333; text-align: center;">
      <p style="color: #888; font-size: 12px; margin: 0;">
        This email was sent from the {{.Site}} contact form
      </p>
    </div>
  </div>
</div>
`))

// ContactMessage builds the notification sent to the site owner. The reply
// goes back to the person who filled in the form.
func ContactMessage(form ContactForm, to, site string) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		ContactForm
		Site string
	}{form, site}
	if err := contactTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render contact email: %w", err)
	}
	return Message{
		To:      []string{to},
		Subject: "Contact Form: " + form.Subject,
		HTML:    buf.String(),
		ReplyTo: form.Email,
	}, nil
}
