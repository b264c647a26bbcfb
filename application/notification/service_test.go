package notification

import (
	"context"
	"errors"
	"testing"

	"videoxt/domain/distribution"
	"videoxt/domain/notification"
)

type mockSender struct {
	req *notification.ShareRequest
	err error
}

func (m *mockSender) Send(ctx context.Context, req *notification.ShareRequest) error {
	m.req = req
	return m.err
}

func TestService_Notify(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(sender, "Sam", nil)
	to := []notification.Recipient{{Address: "ann@example.com"}}

	err := svc.Notify(context.Background(), to, "match.mp4_frames", []distribution.UploadResult{
		{FileName: "match_0.jpg", ShareableURL: "https://drive.google.com/file/d/a/view", Size: 10},
		{FileName: "match_15.jpg", ShareableURL: "https://drive.google.com/file/d/b/view", Size: 20},
	})
	if err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	req := sender.req
	if req == nil {
		t.Fatal("nothing was sent")
	}
	if req.Source != "match.mp4_frames" || req.SenderName != "Sam" || len(req.To) != 1 {
		t.Errorf("request = %+v", req)
	}
	if len(req.Links) != 2 || req.Links[1].Name != "match_15.jpg" || req.Links[1].Size != 20 {
		t.Errorf("links = %+v", req.Links)
	}
}

func TestService_NotifyError(t *testing.T) {
	sender := &mockSender{err: notification.ErrSendFailed}
	svc := NewService(sender, "", nil)

	err := svc.Notify(context.Background(), nil, "x", nil)
	if !errors.Is(err, notification.ErrSendFailed) {
		t.Errorf("Notify() error = %v, want ErrSendFailed", err)
	}
}
