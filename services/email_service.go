package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/NomadCrew/nomad-feedback-backend/config"
	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

type EmailService struct {
	config  *config.EmailConfig
	client  *resend.Client
	tmpl    *template.Template
	metrics *EmailMetrics
}

var _ types.EmailService = (*EmailService)(nil)

var newFeedbackTemplate = template.Must(template.New("new_feedback").Parse(newFeedbackEmailTemplate))

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress, "notify", logger.MaskEmail(cfg.NotifyAddress), "apikey", logger.MaskAPIKey(cfg.ResendAPIKey))
	client := resend.NewClient(cfg.ResendAPIKey)
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "feedback_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	if reg != nil {
		reg.MustRegister(metrics.sendLatency)
		reg.MustRegister(metrics.errorCount)
		reg.MustRegister(metrics.sentCount)
	}

	return &EmailService{
		config:  cfg,
		client:  client,
		tmpl:    newFeedbackTemplate,
		metrics: metrics,
	}
}

// SendNewFeedbackEmail tells the configured notify address about a new submission.
func (s *EmailService) SendNewFeedbackEmail(ctx context.Context, fb *types.Feedback) error {
	if fb == nil {
		return fmt.Errorf("feedback is required")
	}

	return s.send(ctx, types.EmailData{
		To:      s.config.NotifyAddress,
		Subject: fmt.Sprintf("New %s feedback from %s", fb.Type, fb.Name),
		TemplateData: map[string]interface{}{
			"ID":        fb.ID,
			"Name":      fb.Name,
			"Email":     fb.Email,
			"Type":      string(fb.Type),
			"Message":   fb.Message,
			"CreatedAt": fb.CreatedAt,
		},
	})
}

func (s *EmailService) send(ctx context.Context, data types.EmailData) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	if data.To == "" {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("missing recipient")
	}

	var htmlContent bytes.Buffer
	if err := s.tmpl.Execute(&htmlContent, data.TemplateData); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to execute email template", "error", err)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{data.To},
		Subject: data.Subject,
		Html:    htmlContent.String(),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"to", logger.MaskEmail(data.To),
			"subject", data.Subject)
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Email sent successfully",
		"to", logger.MaskEmail(data.To),
		"subject", data.Subject)

	return nil
}

const newFeedbackEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New feedback</title>
    <style>
        body { font-family: sans-serif; background-color: #f7f7f7; color: #333333; padding: 20px; }
        .container { max-width: 600px; margin: 20px auto; background-color: #ffffff; padding: 30px; border-radius: 12px; }
        .meta { font-size: 14px; color: #777777; }
        .message { font-size: 16px; line-height: 1.6; white-space: pre-wrap; }
    </style>
</head>
<body>
    <div class="container">
        <h1>New {{.Type}} feedback</h1>
        <p class="meta">From {{.Name}} &lt;{{.Email}}&gt; at {{.CreatedAt}} (id {{.ID}})</p>
        <p class="message">{{.Message}}</p>
    </div>
</body>
</html>`
