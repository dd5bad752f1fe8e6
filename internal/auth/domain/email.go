package domain

// EmailTemplate selects the message body rendered by the mailer.
type EmailTemplate string

const (
	TemplateEmailConfirmation EmailTemplate = "EmailConfirmation"
	TemplateForgetPassword    EmailTemplate = "ForgetPassword"
)

// EmailTask is the unit of work handed to the job queue.
type EmailTask struct {
	ID       string            `json:"id"`
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Template EmailTemplate     `json:"template"`
	Data     map[string]string `json:"data"`
}
