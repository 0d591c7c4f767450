package types

import "context"

// EmailService sends notification mail about feedback.
type EmailService interface {
	SendNewFeedbackEmail(ctx context.Context, fb *Feedback) error
}

type EmailData struct {
	To           string
	Subject      string
	TemplateData map[string]interface{}
}
