package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/lumenops/identity/internal/core/ports"
)

// DeliveryConfig holds the SendGrid delivery configuration
type DeliveryConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	CompanyName    string
	BaseURL        string
}

// SendGridDelivery hands confirmation tokens to SendGrid.
type SendGridDelivery struct {
	config   *DeliveryConfig
	logger   *logrus.Logger
	client   *sendgrid.Client
	template *template.Template
}

const confirmationTemplate = `<html>
<body>
<p>Hello,</p>
<p>Confirm this email address for your {{.CompanyName}} account by following the link below:</p>
<p><a href="{{.ConfirmationURL}}">Confirm email address</a></p>
<p>If you did not request this, you can ignore this message.</p>
</body>
</html>`

// confirmationData holds data for the confirmation template
type confirmationData struct {
	CompanyName     string
	ConfirmationURL string
}

// NewSendGridDelivery creates a new SendGrid-backed delivery service
func NewSendGridDelivery(config *DeliveryConfig, logger *logrus.Logger) (ports.DeliveryService, error) {
	tmpl, err := template.New("confirmation").Parse(confirmationTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse confirmation template: %w", err)
	}

	return &SendGridDelivery{
		config:   config,
		logger:   logger,
		client:   sendgrid.NewSendClient(config.SendGridAPIKey),
		template: tmpl,
	}, nil
}

// SendConfirmation sends a confirmation link carrying the token.
func (d *SendGridDelivery) SendConfirmation(ctx context.Context, address, token string) error {
	data := confirmationData{
		CompanyName:     d.config.CompanyName,
		ConfirmationURL: fmt.Sprintf("%s/api/v1/auth/confirm?token=%s", d.config.BaseURL, token),
	}

	var buf bytes.Buffer
	if err := d.template.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render confirmation email: %w", err)
	}

	from := mail.NewEmail(d.config.FromName, d.config.FromEmail)
	recipient := mail.NewEmail("", address)
	subject := fmt.Sprintf("Confirm your email address - %s", d.config.CompanyName)
	message := mail.NewSingleEmail(from, subject, recipient, "", buf.String())

	response, err := d.client.Send(message)
	if err != nil {
		if d.logger != nil {
			d.logger.WithFields(logrus.Fields{"to": address}).WithError(err).Error("failed to send confirmation email")
		}
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	if d.logger != nil {
		d.logger.WithFields(logrus.Fields{
			"to":          address,
			"status_code": response.StatusCode,
		}).Info("confirmation email sent")
	}

	return nil
}
