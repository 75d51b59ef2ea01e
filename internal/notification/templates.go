package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/mail"
)

type callout struct {
	Background template.CSS
	Border     template.CSS
	Color      template.CSS
	Text       string
}

type emailStyle struct {
	subject    string
	heading    string
	color      template.CSS
	textPrefix string
	emphasize  bool
	callout    *callout
}

var emailStyles = map[domain.NotificationType]emailStyle{
	domain.NotificationTaskCreated: {
		subject:    "New Task Created",
		heading:    "✅ New Task Created",
		color:      "#4F46E5",
		textPrefix: "You created a new task: ",
	},
	domain.NotificationTaskUpdated: {
		subject:    "Task Updated",
		heading:    "🔄 Task Updated",
		color:      "#4F46E5",
		textPrefix: "Your task was updated: ",
	},
	domain.NotificationTaskDeadlineApproaching: {
		subject:    "⚠️ Task Deadline Approaching",
		heading:    "⚠️ Deadline Approaching",
		color:      "#F59E0B",
		textPrefix: "Reminder: ",
		emphasize:  true,
		callout: &callout{
			Background: "#FEF3C7",
			Border:     "#F59E0B",
			Color:      "#92400E",
			Text:       "Don't forget to complete this task before the deadline!",
		},
	},
	domain.NotificationTaskOverdue: {
		subject:    "🚨 Task Overdue!",
		heading:    "🚨 Task Overdue",
		color:      "#DC2626",
		textPrefix: "URGENT: ",
		emphasize:  true,
		callout: &callout{
			Background: "#FEE2E2",
			Border:     "#DC2626",
			Color:      "#991B1B",
			Text:       "This task is past its deadline. Please take action immediately!",
		},
	},
}

var emailHTML = template.Must(template.New("email").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: {{.Color}};">{{.Heading}}</h2>
  {{if .Emphasize}}<p style="font-size: 16px; color: #333;">{{.Message}}</p>{{else}}<p>{{.Message}}</p>{{end}}
  <p style="color: #666; font-size: 14px;">Task ID: {{.TaskID}}</p>
  {{- with .Callout}}
  <div style="margin-top: 20px; padding: 15px; background-color: {{.Background}}; border-left: 4px solid {{.Border}};">
    <p style="margin: 0; color: {{.Color}};">{{.Text}}</p>
  </div>
  {{- end}}
</div>
`))

type emailData struct {
	Color     template.CSS
	Heading   string
	Emphasize bool
	Message   string
	TaskID    string
	Callout   *callout
}

// renderEmail builds the message for n addressed to to.
func renderEmail(n domain.Notification, to string) (mail.Message, error) {
	style, ok := emailStyles[n.Type]
	if !ok {
		return mail.Message{}, fmt.Errorf("no email template for notification type %q", n.Type)
	}

	var buf bytes.Buffer
	err := emailHTML.Execute(&buf, emailData{
		Color:     style.color,
		Heading:   style.heading,
		Emphasize: style.emphasize,
		Message:   n.Message,
		TaskID:    n.TaskID.String(),
		Callout:   style.callout,
	})
	if err != nil {
		return mail.Message{}, fmt.Errorf("render %s email: %w", n.Type, err)
	}

	return mail.Message{
		To:      to,
		Subject: style.subject,
		HTML:    buf.String(),
		Text:    style.textPrefix + n.Message,
	}, nil
}
