package dto

// SendEmailRequest carries a single-recipient HTML mail. Attachments are
// object-store keys resolved server-side, never inline content.
type SendEmailRequest struct {
	To          string   `json:"to"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	Attachments []string `json:"attachments,omitempty"`
}

type SendEmailResponse struct {
	Success bool `json:"success"`
}
