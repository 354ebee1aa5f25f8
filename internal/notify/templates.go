package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var (
	inviteTmpl = template.Must(template.New("invite").Parse(`<p>Hi {{.FreelancerName}},</p>
<p>{{.ClientName}} invited you to work on <strong>{{.JobTitle}}</strong>.</p>
{{if .Message}}<blockquote>{{.Message}}</blockquote>{{end}}
<p><a href="{{.JobURL}}">View the job</a></p>`))

	inviteAcceptedTmpl = template.Must(template.New("invite_accepted").Parse(`<p>Hi {{.ClientName}},</p>
<p>{{.FreelancerName}} accepted your invitation for <strong>{{.JobTitle}}</strong> and has started working on it.</p>`))

	inviteDeclinedTmpl = template.Must(template.New("invite_declined").Parse(`<p>Hi {{.ClientName}},</p>
<p>{{.FreelancerName}} declined your invitation for <strong>{{.JobTitle}}</strong>.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}`))
)

type InviteEmail struct {
	ClientName     string
	FreelancerName string
	JobTitle       string
	JobURL         string
	Message        string
	Reason         string
}

func RenderInvite(d InviteEmail) (string, string, error) {
	body, err := render(inviteTmpl, d)
	return "You have been invited to a job", body, err
}

func RenderInviteAccepted(d InviteEmail) (string, string, error) {
	body, err := render(inviteAcceptedTmpl, d)
	return "Your invitation was accepted", body, err
}

func RenderInviteDeclined(d InviteEmail) (string, string, error) {
	body, err := render(inviteDeclinedTmpl, d)
	return "Your invitation was declined", body, err
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
