// internal/alerts/notifier.go
package alerts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"loan-approval-workers/internal/common/aws"
	"loan-approval-workers/internal/common/config"
	apperrors "loan-approval-workers/internal/common/errors"
	"loan-approval-workers/internal/common/logger"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

// Alert is an operator notification, usually about a failed startup.
type Alert struct {
	ID       string
	Severity Severity
	Title    string
	Message  string
	Fields   map[string]string
	At       time.Time
}

// Subject is the one-line summary used as SNS subject and email subject.
func (a Alert) Subject(service string) string {
	return fmt.Sprintf("[%s] %s: %s", a.Severity, service, a.Title)
}

// Body renders the alert as plain text.
func (a Alert) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", a.Message)
	fmt.Fprintf(&b, "alertId: %s\n", a.ID)
	fmt.Fprintf(&b, "time: %s\n", a.At.Format(time.RFC3339))

	keys := make([]string, 0, len(a.Fields))
	for k := range a.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, a.Fields[k])
	}
	return b.String()
}

// Publisher sends an alert to an SNS topic.
type Publisher interface {
	PublishAlert(ctx context.Context, topicARN, subject, message string) (string, error)
}

// Mailer sends an alert email.
type Mailer interface {
	SendAlertEmail(ctx context.Context, from string, to []string, subject, body string) (string, error)
}

// Notifier fans an alert out to SNS and SES. A disabled notifier only logs.
type Notifier struct {
	cfg       config.AlertsConfig
	service   string
	publisher Publisher
	mailer    Mailer
	logger    logger.Logger
}

// New builds a notifier backed by AWS clients for cfg.Region.
func New(ctx context.Context, cfg config.AlertsConfig, service string, log logger.Logger) (*Notifier, error) {
	if !cfg.Enabled {
		return NewWithClients(cfg, service, nil, nil, log), nil
	}

	awsCfg, err := aws.LoadConfig(ctx, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var (
		publisher Publisher
		mailer    Mailer
	)
	if cfg.SNS.TopicARN != "" {
		publisher = aws.NewSNSClient(awsCfg)
	}
	if cfg.SES.FromEmail != "" && len(cfg.SES.To) > 0 {
		mailer = aws.NewSESClient(awsCfg)
	}
	return NewWithClients(cfg, service, publisher, mailer, log), nil
}

// NewWithClients builds a notifier from explicit clients. Nil clients are skipped.
func NewWithClients(cfg config.AlertsConfig, service string, publisher Publisher, mailer Mailer, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Notifier{
		cfg:       cfg,
		service:   service,
		publisher: publisher,
		mailer:    mailer,
		logger:    log,
	}
}

// Notify delivers a. It tries every channel and reports the failures together.
func (n *Notifier) Notify(ctx context.Context, a Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.At.IsZero() {
		a.At = time.Now().UTC()
	}
	if a.Severity == "" {
		a.Severity = SeverityCritical
	}

	n.logger.Warn("Raising alert", map[string]interface{}{
		"alertId":  a.ID,
		"severity": string(a.Severity),
		"title":    a.Title,
		"enabled":  n.cfg.Enabled,
	})
	if !n.cfg.Enabled {
		return nil
	}

	subject, body := a.Subject(n.service), a.Body()
	var errs []error

	if n.publisher != nil {
		msgID, err := n.publisher.PublishAlert(ctx, n.cfg.SNS.TopicARN, subject, body)
		if err != nil {
			errs = append(errs, apperrors.NewAlertPublishFailedError("sns", err))
		} else {
			n.logger.Info("Alert published", map[string]interface{}{"alertId": a.ID, "channel": "sns", "messageId": msgID})
		}
	}
	if n.mailer != nil {
		msgID, err := n.mailer.SendAlertEmail(ctx, n.cfg.SES.FromEmail, n.cfg.SES.To, subject, body)
		if err != nil {
			errs = append(errs, apperrors.NewAlertPublishFailedError("ses", err))
		} else {
			n.logger.Info("Alert published", map[string]interface{}{"alertId": a.ID, "channel": "ses", "messageId": msgID})
		}
	}

	if err := errors.Join(errs...); err != nil {
		n.logger.Error("Alert delivery failed", map[string]interface{}{"alertId": a.ID, "error": err.Error()})
		return err
	}
	return nil
}

// StartupFailure builds the alert raised when the service cannot start.
func StartupFailure(stage string, err error) Alert {
	fields := map[string]string{"stage": stage}

	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		fields["errorCode"] = string(stdErr.Code)
		for k, v := range stdErr.Metadata {
			fields[k] = fmt.Sprint(v)
		}
	}

	return Alert{
		Severity: SeverityCritical,
		Title:    "startup failed at " + stage,
		Message:  err.Error(),
		Fields:   fields,
	}
}
