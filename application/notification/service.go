package notification

import (
	"context"

	"go.uber.org/zap"

	"videoxt/domain/distribution"
	"videoxt/domain/notification"
)

// Service emails the share links of uploaded extraction results
type Service struct {
	sender     notification.EmailSender
	senderName string
	logger     *zap.Logger
}

// NewService creates a new notification service
func NewService(sender notification.EmailSender, senderName string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sender:     sender,
		senderName: senderName,
		logger:     logger,
	}
}

// Notify sends one email listing every uploaded file to the recipients
func (s *Service) Notify(ctx context.Context, to []notification.Recipient, source string, files []distribution.UploadResult) error {
	links := make([]notification.Link, len(files))
	for i, f := range files {
		links[i] = notification.Link{Name: f.FileName, URL: f.ShareableURL, Size: f.Size}
	}

	s.logger.Debug("emailing share links", zap.String("source", source), zap.Int("links", len(links)))
	return s.sender.Send(ctx, &notification.ShareRequest{
		To:         to,
		Source:     source,
		Links:      links,
		SenderName: s.senderName,
	})
}
