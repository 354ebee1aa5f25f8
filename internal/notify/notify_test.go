package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	input *ses.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.input = params
	return &ses.SendEmailOutput{}, m.err
}

type mockSNS struct {
	input *sns.PublishInput
	err   error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.input = params
	return &sns.PublishOutput{}, m.err
}

func TestMailer_Send(t *testing.T) {
	m := &mockSES{}
	err := NewMailer(m, "no-reply@example.com").Send(context.Background(), "f@example.com", "Hi", "<p>x</p>")
	require.NoError(t, err)

	assert.Equal(t, "no-reply@example.com", *m.input.Source)
	assert.Equal(t, []string{"f@example.com"}, m.input.Destination.ToAddresses)
	assert.Equal(t, "Hi", *m.input.Message.Subject.Data)
	assert.Equal(t, "<p>x</p>", *m.input.Message.Body.Html.Data)
}

func TestMailer_Errors(t *testing.T) {
	assert.Error(t, NewMailer(&mockSES{}, "s").Send(context.Background(), "", "s", "b"))

	m := &mockSES{err: errors.New("throttled")}
	err := NewMailer(m, "s").Send(context.Background(), "a@b.c", "s", "b")
	assert.ErrorContains(t, err, "throttled")
}

func TestPusher_Push(t *testing.T) {
	m := &mockSNS{}
	err := NewPusher(m).Push(context.Background(), "arn:aws:sns:endpoint/1", PushMessage{Title: "Job Started", Body: "Work began", URL: "/jobs/1"})
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:sns:endpoint/1", *m.input.TargetArn)
	assert.Equal(t, "json", *m.input.MessageStructure)

	var doc map[string]string
	require.NoError(t, json.Unmarshal([]byte(*m.input.Message), &doc))
	assert.Equal(t, "Work began", doc["default"])

	var gcm struct {
		Notification map[string]string `json:"notification"`
		Data         map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc["GCM"]), &gcm))
	assert.Equal(t, "Job Started", gcm.Notification["title"])
	assert.Equal(t, "/jobs/1", gcm.Data["url"])
}

func TestPusher_EmptyEndpoint(t *testing.T) {
	assert.Error(t, NewPusher(&mockSNS{}).Push(context.Background(), "", PushMessage{}))
}

func TestRenderInvite_EscapesHTML(t *testing.T) {
	subject, body, err := RenderInvite(InviteEmail{
		FreelancerName: "Ann",
		ClientName:     "Bob",
		JobTitle:       "<script>x</script>",
		JobURL:         "https://app.example/job-detail/1/",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, subject)
	assert.Contains(t, body, "https://app.example/job-detail/1/")
	assert.NotContains(t, body, "<script>")
}
