package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSAPI is the part of the SNS client the pusher uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type PushMessage struct {
	Title string
	Body  string
	URL   string
}

// Pusher publishes mobile push notifications to SNS platform endpoints.
type Pusher struct {
	client SNSAPI
}

func NewPusher(client SNSAPI) *Pusher {
	return &Pusher{client: client}
}

func (p *Pusher) Push(ctx context.Context, endpointARN string, msg PushMessage) error {
	if endpointARN == "" {
		return errors.New("push endpoint is empty")
	}

	payload, err := fcmPayload(msg)
	if err != nil {
		return err
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TargetArn:        aws.String(endpointARN),
		Message:          aws.String(payload),
		MessageStructure: aws.String("json"),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

// fcmPayload builds the per-platform message document SNS expects with MessageStructure=json.
func fcmPayload(msg PushMessage) (string, error) {
	gcm, err := json.Marshal(map[string]any{
		"notification": map[string]string{
			"title": msg.Title,
			"body":  msg.Body,
		},
		"data": map[string]string{
			"url": msg.URL,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode gcm payload: %w", err)
	}

	doc, err := json.Marshal(map[string]string{
		"default": msg.Body,
		"GCM":     string(gcm),
	})
	if err != nil {
		return "", fmt.Errorf("encode sns payload: %w", err)
	}
	return string(doc), nil
}
