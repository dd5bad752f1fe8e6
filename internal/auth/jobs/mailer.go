package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
)

// Mailer delivers one rendered email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.Logger.InfoContext(ctx, "email",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}

var templates = map[domain.EmailTemplate]string{
	domain.TemplateEmailConfirmation: "Hi {{name}},\n\nPlease confirm your Survey Basket account:\n{{action_url}}\n",
	domain.TemplateForgetPassword:    "Hi {{name}},\n\nUse this link to choose a new Survey Basket password:\n{{action_url}}\n",
}

// RenderBody fills the task's template with its data.
func RenderBody(task domain.EmailTask) (string, error) {
	tmpl, ok := templates[task.Template]
	if !ok {
		return "", fmt.Errorf("jobs: unknown template %q", task.Template)
	}
	pairs := make([]string, 0, 2*len(task.Data))
	for k, v := range task.Data {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl), nil
}
