// Package memory is an in-process Broker for single-node deployments and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jwalitptl/pharmacy-portal/pkg/messaging"
)

// SubscriberBuffer is how many undelivered payloads a subscriber may hold
// before it is dropped.
const SubscriberBuffer = 100

type subscriber struct {
	ch   chan []byte
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[*subscriber]struct{})}
}

var _ messaging.Broker = (*Broker)(nil)

// Publish hands payload to every subscriber without blocking. Subscribers
// with a full buffer are evicted.
func (b *Broker) Publish(ctx context.Context, channel string, message interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	var slow []*subscriber
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("broker closed")
	}
	for s := range b.subs[channel] {
		select {
		case s.ch <- payload:
		default:
			slow = append(slow, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range slow {
		b.remove(channel, s)
	}
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("broker closed")
	}

	s := &subscriber{ch: make(chan []byte, SubscriberBuffer)}
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*subscriber]struct{})
	}
	b.subs[channel][s] = struct{}{}

	go func() {
		<-ctx.Done()
		b.remove(channel, s)
	}()

	return s.ch, nil
}

// remove unregisters s and closes its channel. Sends happen under the read
// lock, so closing under the write lock cannot race them.
func (b *Broker) remove(channel string, s *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[channel]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, channel)
		}
	}
	s.close()
}

// SubscriberCount returns the number of live subscriptions on a channel.
func (b *Broker) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
