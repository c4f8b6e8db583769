// Package mail renders and delivers the registration letter.
package mail

import (
	"context"
	"fmt"
	"strings"
)

const (
	registrationSender  = "Registration <noreply@%s>"
	registrationSubject = "Registration confirmation"
	tokenPlaceholder    = "{token}"
)

// Message is a rendered letter with a plain text and an HTML body.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// VerifyLink substitutes token into a link template such as
// "https://example.com/register/verify?token={token}".
func VerifyLink(template, token string) string {
	return strings.ReplaceAll(template, tokenPlaceholder, token)
}

func registrationFrom(domain string) string {
	return fmt.Sprintf(registrationSender, domain)
}
