package notification

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
)

// Recipient represents an email recipient with name and address
type Recipient struct {
	Name    string
	Address string
}

// String formats the recipient for a mail header
func (r Recipient) String() string {
	if r.Name == "" {
		return r.Address
	}
	return (&mail.Address{Name: r.Name, Address: r.Address}).String()
}

// Link is one uploaded file and where it can be opened
type Link struct {
	Name string
	URL  string
	Size int64
}

// ShareRequest contains everything needed to email the share links of an
// uploaded extraction
type ShareRequest struct {
	To         []Recipient // Primary recipients
	Source     string      // What the files were extracted from or uploaded as
	Links      []Link      // Shared files, in upload order
	SenderName string      // Name to sign the email with, optional
}

// Validate checks that the share request has all required fields
func (r *ShareRequest) Validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range r.To {
		if to.Address == "" {
			return ErrInvalidRecipient
		}
	}
	if len(r.Links) == 0 {
		return ErrNoLinks
	}
	return nil
}

// EmailSender defines the interface for sending emails
type EmailSender interface {
	Send(ctx context.Context, req *ShareRequest) error
}

// ParseRecipients parses a comma separated address list such as
// "Ann Lee <ann@example.com>, bob@example.com"
func ParseRecipients(list string) ([]Recipient, error) {
	if strings.TrimSpace(list) == "" {
		return nil, ErrNoRecipients
	}
	addrs, err := mail.ParseAddressList(list)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipient, err)
	}
	recipients := make([]Recipient, len(addrs))
	for i, a := range addrs {
		recipients[i] = Recipient{Name: a.Name, Address: a.Address}
	}
	return recipients, nil
}
