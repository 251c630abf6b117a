package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// Sink delivers human readable announcements. Delivery is best effort.
type Sink interface {
	Notify(ctx context.Context, text string) error
}

// WriterSink prints one timestamped line per announcement.
type WriterSink struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w, now: time.Now}
}

var stamp = color.New(color.FgHiBlack).SprintFunc()

func (s *WriterSink) Notify(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintf(s.w, "%s %s\n", stamp(s.now().Format("2006-01-02 15:04:05")), text)
	return err
}

var ErrWebhookRejected = errors.New("webhook rejected notification")

type webhookMessage struct {
	Text string `json:"text"`
}

// WebhookSink posts announcements as {"text": ...} to an incoming webhook
// of a chat service.
type WebhookSink struct {
	url string
	rc  *resty.Client
}

func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url: url,
		rc:  resty.New().SetHeader("content-type", "application/json"),
	}
}

func (s *WebhookSink) Notify(ctx context.Context, text string) error {
	r, err := s.rc.R().
		SetContext(ctx).
		SetBody(webhookMessage{Text: text}).
		Post(s.url)
	if err != nil {
		return err
	}

	if !r.IsSuccess() {
		return errors.Wrapf(ErrWebhookRejected, "HTTP %d: %s", r.StatusCode(), strings.TrimSpace(string(r.Body())))
	}

	return nil
}

// Multi sends every announcement to all of its sinks, even if some fail.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, text string) error {
	var failed []string
	for _, s := range m {
		if err := s.Notify(ctx, text); err != nil {
			failed = append(failed, err.Error())
		}
	}

	if len(failed) > 0 {
		return errors.New(strings.Join(failed, "; "))
	}

	return nil
}
