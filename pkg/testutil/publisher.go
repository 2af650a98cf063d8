package testutil

import (
	"context"
	"sync"

	"github.com/questx-lab/luckydraw/pkg/pubsub"
)

// MockPublisher keeps every published pack. PublishFunc, when set, decides the
// returned error.
type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mu        sync.Mutex
	published map[string][]*pubsub.Pack
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, topic, pack); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.published == nil {
		m.published = make(map[string][]*pubsub.Pack)
	}
	m.published[topic] = append(m.published[topic], pack)
	return nil
}

func (m *MockPublisher) Published(topic string) []*pubsub.Pack {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.published[topic]
}

func (m *MockPublisher) Stop(ctx context.Context) error {
	return nil
}
