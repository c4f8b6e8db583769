package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templates embed.FS

const registrationText = "To finish registration follow the link: %s\n"

// Service renders letters and hands them to a Sender.
type Service struct {
	sender       Sender
	domain       string
	linkTemplate string
	registration *template.Template
}

func NewService(sender Sender, domain, linkTemplate string) (*Service, error) {
	tmpl, err := template.ParseFS(templates, "templates/registration.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &Service{sender: sender, domain: domain, linkTemplate: linkTemplate, registration: tmpl}, nil
}

// SendRegistrationLetter mails the verification link for token to email.
func (s *Service) SendRegistrationLetter(ctx context.Context, name, email, token string) error {
	link := VerifyLink(s.linkTemplate, token)

	var html bytes.Buffer
	if err := s.registration.Execute(&html, struct{ Name, Link string }{Name: name, Link: link}); err != nil {
		return fmt.Errorf("render registration letter: %w", err)
	}

	return s.sender.Send(ctx, Message{
		From:    registrationFrom(s.domain),
		To:      email,
		Subject: registrationSubject,
		Text:    fmt.Sprintf(registrationText, link),
		HTML:    html.String(),
	})
}
