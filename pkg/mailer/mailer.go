package mailer

import (
	"context"
	"fmt"

	"gastrotour/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// Mailer sends a single transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewMailer picks the implementation from config. Provider "ses" uses
// AWS SES, anything else falls back to a noop mailer that only logs.
func NewMailer(config utils.MailerConfig, log *zap.Logger) Mailer {
	switch config.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: config.SESRegion,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					config.SESAccessKeyID,
					config.SESSecretKey,
					"",
				),
			),
		}
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			fromName:    config.FromName,
			fromAddress: config.FromAddress,
			replyTo:     config.ReplyTo,
			log:         log.With(zap.String("mailer", "ses")),
		}
	default:
		if config.Provider != "noop" {
			log.Warn("Unknown mailer provider, falling back to noop",
				zap.String("provider", config.Provider))
		}
		return &noopMailer{log: log.With(zap.String("mailer", "noop"))}
	}
}

type sesMailer struct {
	client      *ses.Client
	fromName    string
	fromAddress string
	replyTo     string
	log         *zap.Logger
}

func (m *sesMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	source := m.fromAddress
	if m.fromName != "" {
		source = fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}
	if m.replyTo != "" {
		input.ReplyToAddresses = []string{m.replyTo}
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("send email via SES: %w", err)
	}

	m.log.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)
	return nil
}

type noopMailer struct {
	log *zap.Logger
}

func (m *noopMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.log.Info("Email would be sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
