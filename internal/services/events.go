package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/pkg/logger"
	"golang.org/x/time/rate"
)

// Topic names a stream of change events.
type Topic string

const (
	TopicTaskUpdated  Topic = "taskUpdated"
	TopicCommentAdded Topic = "commentAdded"
)

// ValidTopic reports whether t names a known topic.
func ValidTopic(t Topic) bool {
	return t == TopicTaskUpdated || t == TopicCommentAdded
}

type TaskAction string

const (
	TaskCreated TaskAction = "CREATED"
	TaskUpdated TaskAction = "UPDATED"
	TaskDeleted TaskAction = "DELETED"
	TaskMoved   TaskAction = "MOVED"
)

// TaskUpdatePayload is delivered to taskUpdated subscribers of the task's project.
type TaskUpdatePayload struct {
	Action TaskAction   `json:"action"`
	Task   *models.Task `json:"task"`
}

// Publisher is the part of the fan-out the board services depend on.
type Publisher interface {
	PublishTaskEvent(action TaskAction, task *models.Task)
	PublishCommentAdded(comment *models.Comment)
}

var ErrHubClosed = errors.New("event hub closed")

// backlogWarnThreshold is the queue depth past which a subscriber is reported as lagging.
const backlogWarnThreshold = 1000

// Subscription receives every event published on its topic. Events whose
// project/task id differs from Key arrive as a nil payload, so the stream
// has one entry per event in publish order.
type Subscription struct {
	ID    string
	Topic Topic
	Key   string

	hub       *EventHub
	mu        sync.Mutex
	queue     []interface{}
	ready     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func (s *Subscription) push(payload interface{}) int {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return 0
	default:
	}
	s.queue = append(s.queue, payload)
	n := len(s.queue)
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	return n
}

// Next blocks until an entry is available, the subscription is closed, or
// ctx is done. ok is false in the latter two cases.
func (s *Subscription) Next(ctx context.Context) (payload interface{}, ok bool) {
	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			payload = s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return payload, true
		}
		s.mu.Unlock()

		select {
		case <-s.ready:
		case <-s.done:
			return nil, false
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Backlog returns the number of queued, undelivered entries.
func (s *Subscription) Backlog() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close unregisters the subscription from its hub.
func (s *Subscription) Close() {
	s.hub.Unsubscribe(s.ID)
}

func (s *Subscription) terminate() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		close(s.done)
		s.queue = nil
		s.mu.Unlock()
	})
}

// HubStats is a point-in-time view of the hub.
type HubStats struct {
	Subscribers int           `json:"subscribers"`
	ByTopic     map[Topic]int `json:"by_topic"`
	MaxBacklog  int           `json:"max_backlog"`
}

// EventHub is the in-process fan-out for live updates. It is created once
// at startup and handed to every producer and stream handler.
type EventHub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool

	// publishMu serialises publishers so every subscriber sees one order.
	publishMu   sync.Mutex
	backlogWarn rate.Sometimes
	log         zerolog.Logger
}

func NewEventHub() *EventHub {
	return &EventHub{
		subs:        make(map[string]*Subscription),
		backlogWarn: rate.Sometimes{First: 1, Interval: 30 * time.Second},
		log:         logger.Component("events"),
	}
}

// Subscribe registers a subscriber for topic filtered by key (project id
// for taskUpdated, task id for commentAdded).
func (h *EventHub) Subscribe(topic Topic, key string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}

	sub := &Subscription{
		ID:    uuid.NewString(),
		Topic: topic,
		Key:   key,
		hub:   h,
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	h.subs[sub.ID] = sub
	h.log.Debug().Str("subscription", sub.ID).Str("topic", string(topic)).Str("key", key).Msg("subscribed")
	return sub, nil
}

// Unsubscribe removes a subscriber and ends its stream. Unknown ids are ignored.
func (h *EventHub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if ok {
		sub.terminate()
		h.log.Debug().Str("subscription", id).Msg("unsubscribed")
	}
}

func (h *EventHub) PublishTaskEvent(action TaskAction, task *models.Task) {
	h.publish(TopicTaskUpdated, task.ProjectID, &TaskUpdatePayload{Action: action, Task: task})
}

func (h *EventHub) PublishCommentAdded(comment *models.Comment) {
	h.publish(TopicCommentAdded, comment.TaskID, comment)
}

func (h *EventHub) publish(topic Topic, key string, payload interface{}) {
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.RLock()
	targets := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		if sub.Topic == topic {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		var backlog int
		if sub.Key == key {
			backlog = sub.push(payload)
		} else {
			backlog = sub.push(nil)
		}
		if backlog > backlogWarnThreshold {
			id := sub.ID
			h.backlogWarn.Do(func() {
				h.log.Warn().Str("subscription", id).Int("backlog", backlog).Msg("subscriber is falling behind")
			})
		}
	}
}

// Stats reports subscriber counts and the deepest queue.
func (h *EventHub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := HubStats{Subscribers: len(h.subs), ByTopic: make(map[Topic]int)}
	for _, sub := range h.subs {
		stats.ByTopic[sub.Topic]++
		if b := sub.Backlog(); b > stats.MaxBacklog {
			stats.MaxBacklog = b
		}
	}
	return stats
}

// Close ends every subscription and rejects new ones.
func (h *EventHub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := h.subs
	h.subs = make(map[string]*Subscription)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.terminate()
	}
	h.log.Info().Int("subscriptions", len(subs)).Msg("event hub closed")
}
