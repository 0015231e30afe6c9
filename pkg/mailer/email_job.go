package mailer

import "errors"

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Template (+Data) or Subject with Text and/or HTML must be set.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "verification_code"
	Data     map[string]any `json:"data,omitempty"`
}

var ErrInvalidJob = errors.New("email job needs a recipient and either a template or a subject with a body")

func (j EmailJob) Validate() error {
	if j.To == "" {
		return ErrInvalidJob
	}
	if j.Template == "" && (j.Subject == "" || (j.Text == "" && j.HTML == "")) {
		return ErrInvalidJob
	}
	return nil
}
