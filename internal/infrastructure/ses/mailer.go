// Package ses delivers OTP email through Amazon SES.
package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/campus-otp/internal/config"
	"github.com/campus-otp/internal/infrastructure/awscfg"
)

const charset = "UTF-8"

// API is the subset of *ses.Client used by Mailer.
type API interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Mailer struct {
	client API
	from   string
}

func NewMailer(ctx context.Context, cfg *config.Config) (*Mailer, error) {
	awsCfg, err := awscfg.Load(ctx, cfg, cfg.SESRegion)
	if err != nil {
		return nil, err
	}
	endpoint := awscfg.Endpoint(cfg)
	client := ses.NewFromConfig(awsCfg, func(o *ses.Options) {
		if endpoint != nil {
			o.BaseEndpoint = endpoint
		}
	})
	return NewMailerWithClient(client, cfg.SMTPFrom), nil
}

func NewMailerWithClient(client API, from string) *Mailer {
	return &Mailer{client: client, from: from}
}

func (m *Mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(m.from),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String(charset)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String(charset)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
