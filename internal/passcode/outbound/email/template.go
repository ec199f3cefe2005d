package email

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/passcode/usecase"
	"github.com/shandysiswandi/passcode/internal/pkg/mail"
)

const subjectTemplate = `Your OTP for {{.AppName}} Registration`

const textTemplate = `{{.AppName}} - Email Verification

Hello {{.Name}}!

Your One-Time Password (OTP) for registration is: {{.Code}}

This OTP is valid for {{.Minutes}} minutes only.
Do not share this OTP with anyone.

If you didn't request this, please ignore this email.

---
This is an automated email from {{.AppName}}
`

const htmlTemplate = `<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #ddd; border-radius: 10px;">
      <div style="text-align: center; margin-bottom: 30px;">
        <h1 style="color: #2563eb; margin-bottom: 10px;">{{.AppName}}</h1>
        <p style="color: #666; font-size: 16px;">Verify Your Email Address</p>
      </div>
      <div style="background: #4f46e5; padding: 30px; border-radius: 10px; text-align: center; margin-bottom: 30px;">
        <h2 style="color: white; margin-bottom: 15px;">Hello {{.Name}}!</h2>
        <p style="color: white; margin-bottom: 20px; font-size: 16px;">Your One-Time Password (OTP) for registration is:</p>
        <div style="background: white; display: inline-block; padding: 20px 40px; border-radius: 8px; font-size: 32px; font-weight: bold; color: #2563eb; letter-spacing: 8px;">{{.Code}}</div>
      </div>
      <div style="background: #f8fafc; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
        <ul style="color: #6b7280; padding-left: 20px;">
          <li>This OTP is valid for <strong>{{.Minutes}} minutes only</strong></li>
          <li>Do not share this OTP with anyone</li>
          <li>If you didn't request this, please ignore this email</li>
        </ul>
      </div>
      <p style="text-align: center; color: #9ca3af; font-size: 14px;">
        This is an automated email from {{.AppName}}<br>Please do not reply to this email.
      </p>
    </div>
  </body>
</html>`

var (
	subjectTpl = texttemplate.Must(texttemplate.New("subject").Option("missingkey=zero").Parse(subjectTemplate))
	textTpl    = texttemplate.Must(texttemplate.New("text").Option("missingkey=zero").Parse(textTemplate))
	htmlTpl    = htmltemplate.Must(htmltemplate.New("html").Option("missingkey=zero").Parse(htmlTemplate))
)

type templateData struct {
	AppName string
	Name    string
	Code    string
	Minutes int
}

func (m *Mail) render(d usecase.Delivery) (mail.Message, error) {
	name := d.Name
	if name == "" {
		name = "there"
	}

	data := templateData{
		AppName: m.opts.AppName,
		Name:    name,
		Code:    d.Code,
		Minutes: int(entity.CodeTTL / time.Minute),
	}

	var subject, text, html bytes.Buffer
	if err := subjectTpl.Execute(&subject, data); err != nil {
		return mail.Message{}, err
	}
	if err := textTpl.Execute(&text, data); err != nil {
		return mail.Message{}, err
	}
	if err := htmlTpl.Execute(&html, data); err != nil {
		return mail.Message{}, err
	}

	return mail.Message{
		From:     m.opts.From,
		To:       []string{d.Identifier},
		Subject:  subject.String(),
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
