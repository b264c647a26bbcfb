package notification

import "errors"

var (
	// ErrNoRecipients is returned when no To recipients are provided
	ErrNoRecipients = errors.New("at least one recipient is required")

	// ErrInvalidRecipient is returned when a recipient has no email address
	ErrInvalidRecipient = errors.New("recipient must have an email address")

	// ErrNoLinks is returned when there is nothing to share
	ErrNoLinks = errors.New("at least one shared link is required")

	// ErrSendFailed is returned when the email fails to send
	ErrSendFailed = errors.New("failed to send email")
)
