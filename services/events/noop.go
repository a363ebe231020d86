package eventsvc

import (
	"context"
	"sync"

	"github.com/trezcool/fyptrack/core/notification"
)

// nopPublisher drops events; used when no broker is configured.
type nopPublisher struct{}

var _ notification.EventPublisher = (*nopPublisher)(nil)

func NewNopPublisher() *nopPublisher { return &nopPublisher{} }

func (nopPublisher) Publish(context.Context, notification.Event) error { return nil }

// CapturePublisher records published events for tests.
type CapturePublisher struct {
	mu     sync.Mutex
	Events []notification.Event
}

var _ notification.EventPublisher = (*CapturePublisher)(nil)

func NewCapturePublisher() *CapturePublisher { return &CapturePublisher{} }

func (p *CapturePublisher) Publish(_ context.Context, event notification.Event) error {
	p.mu.Lock()
	p.Events = append(p.Events, event)
	p.mu.Unlock()
	return nil
}

func (p *CapturePublisher) Published() []notification.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notification.Event, len(p.Events))
	copy(out, p.Events)
	return out
}
