package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the part of the SES client the mailer uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type Mailer struct {
	client SESAPI
	sender string
}

func NewMailer(client SESAPI, sender string) *Mailer {
	return &Mailer{client: client, sender: sender}
}

// Send delivers one HTML email.
func (m *Mailer) Send(ctx context.Context, to, subject, html string) error {
	if to == "" {
		return errors.New("recipient address is empty")
	}
	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}
