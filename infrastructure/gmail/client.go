package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"videoxt/domain/notification"
	"videoxt/infrastructure/googleauth"
)

// OAuthScope is the Gmail scope needed to send mail as the signed in user
const OAuthScope = gmail.GmailSendScope

// mimeBoundary separates the plain text and HTML parts
const mimeBoundary = "videoxt-share-links"

// GmailService defines the interface for Gmail API operations
// This allows mocking the Gmail API in tests
type GmailService interface {
	SendMessage(ctx context.Context, userID string, message *gmail.Message) (*gmail.Message, error)
}

// GoogleGmailService is the production implementation using the Gmail API
type GoogleGmailService struct {
	service *gmail.Service
}

// SendMessage sends an email via Gmail API
func (s *GoogleGmailService) SendMessage(ctx context.Context, userID string, message *gmail.Message) (*gmail.Message, error) {
	return s.service.Users.Messages.Send(userID, message).Context(ctx).Do()
}

// Client implements notification.EmailSender using Gmail API
type Client struct {
	gmailService GmailService
	from         notification.Recipient
	template     notification.EmailTemplate
	logger       *zap.Logger
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithGmailService sets a custom Gmail service (for testing)
func WithGmailService(svc GmailService) ClientOption {
	return func(c *Client) {
		c.gmailService = svc
	}
}

// WithTemplate sets a custom email template
func WithTemplate(tmpl notification.EmailTemplate) ClientOption {
	return func(c *Client) {
		c.template = tmpl
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new Gmail client
func NewClient(from notification.Recipient, opts ...ClientOption) *Client {
	c := &Client{
		from:     from,
		template: notification.DefaultTemplate,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewClientWithOAuth creates a Gmail client authorized through the shared
// OAuth token. The Gmail send scope is requested when cfg names no scopes.
func NewClientWithOAuth(ctx context.Context, cfg googleauth.Config, from notification.Recipient, out io.Writer, opts ...ClientOption) (*Client, error) {
	c := NewClient(from, opts...)

	if c.gmailService == nil {
		if len(cfg.Scopes) == 0 {
			cfg.Scopes = []string{OAuthScope}
		}
		httpClient, err := googleauth.HTTPClient(ctx, cfg, out, c.logger)
		if err != nil {
			return nil, err
		}
		srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
		if err != nil {
			return nil, fmt.Errorf("unable to create gmail service: %w", err)
		}
		c.gmailService = &GoogleGmailService{service: srv}
	}

	return c, nil
}

// Send emails the share links in req using the Gmail API
func (c *Client) Send(ctx context.Context, req *notification.ShareRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid share request: %w", err)
	}

	data := notification.NewTemplateData(req)

	subject, err := c.template.RenderSubject(data)
	if err != nil {
		return fmt.Errorf("failed to render subject: %w", err)
	}

	plainText, err := c.template.RenderPlainText(data)
	if err != nil {
		return fmt.Errorf("failed to render plain text: %w", err)
	}

	htmlBody, err := c.template.RenderHTML(data)
	if err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(c.buildMIMEMessage(req, subject, plainText, htmlBody))),
	}

	sent, err := c.gmailService.SendMessage(ctx, "me", message)
	if err != nil {
		return fmt.Errorf("%w: %v", notification.ErrSendFailed, err)
	}

	c.logger.Info("share links emailed",
		zap.Int("recipients", len(req.To)),
		zap.Int("links", len(req.Links)),
		zap.String("message_id", sent.Id),
	)
	return nil
}

// buildMIMEMessage builds a RFC 2822 multipart/alternative message
func (c *Client) buildMIMEMessage(req *notification.ShareRequest, subject, plainText, htmlBody string) string {
	var msg strings.Builder

	to := make([]string, len(req.To))
	for i, r := range req.To {
		to[i] = r.String()
	}

	fmt.Fprintf(&msg, "From: %s\r\n", c.from.String())
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&msg, "--%s\r\n", mimeBoundary)
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(plainText)
	msg.WriteString("\r\n\r\n")

	fmt.Fprintf(&msg, "--%s\r\n", mimeBoundary)
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n\r\n")

	fmt.Fprintf(&msg, "--%s--\r\n", mimeBoundary)

	return msg.String()
}

// Ensure Client implements notification.EmailSender
var _ notification.EmailSender = (*Client)(nil)
