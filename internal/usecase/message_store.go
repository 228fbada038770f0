package usecase

import (
	"sync"

	"pasargamex-chat/internal/domain/entity"
	"pasargamex-chat/pkg/logger"
	"pasargamex-chat/pkg/metrics"
)

// timeline is one conversation's messages in insertion order.
type timeline struct {
	order []*entity.Message
	index map[string]int
}

func newTimeline() *timeline {
	return &timeline{index: make(map[string]int)}
}

func (t *timeline) add(msg *entity.Message) bool {
	if _, exists := t.index[msg.ID]; exists {
		return false
	}
	t.index[msg.ID] = len(t.order)
	t.order = append(t.order, msg)
	return true
}

// MessageStore holds per-conversation timelines. Messages are never
// reordered after insertion and each id appears at most once.
type MessageStore struct {
	mu        sync.RWMutex
	timelines map[string]*timeline
	// live holds appended messages not yet covered by a seed, so a later
	// Initialize does not lose pushes that raced ahead of the history fetch.
	live map[string][]*entity.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		timelines: make(map[string]*timeline),
		live:      make(map[string][]*entity.Message),
	}
}

// Initialize replaces the conversation's seed with messages, then re-adds
// every live message the seed does not already contain.
func (s *MessageStore) Initialize(chatID string, messages []*entity.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := newTimeline()
	for _, msg := range messages {
		if msg == nil || msg.ID == "" {
			continue
		}
		t.add(copyMessage(chatID, msg))
	}

	var pending []*entity.Message
	for _, msg := range s.live[chatID] {
		if t.add(msg) {
			pending = append(pending, msg)
		}
	}
	s.live[chatID] = pending
	s.timelines[chatID] = t
}

// Append adds msg unless a message with the same id is already present.
// It reports whether the message was added.
func (s *MessageStore) Append(chatID string, msg *entity.Message) bool {
	if msg == nil || msg.ID == "" {
		logger.Warn("MessageStore Append: ignoring message without id in chat %s", chatID)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timelines[chatID]
	if !ok {
		t = newTimeline()
		s.timelines[chatID] = t
	}

	stored := copyMessage(chatID, msg)
	if !t.add(stored) {
		metrics.MessagesDeduplicated.Inc()
		return false
	}
	s.live[chatID] = append(s.live[chatID], stored)
	return true
}

// Get returns a copy of the conversation's timeline in display order.
func (s *MessageStore) Get(chatID string) []entity.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.timelines[chatID]
	if !ok {
		return []entity.Message{}
	}
	out := make([]entity.Message, len(t.order))
	for i, msg := range t.order {
		out[i] = *msg
	}
	return out
}

func (s *MessageStore) Has(chatID, messageID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.timelines[chatID]
	if !ok {
		return false
	}
	_, exists := t.index[messageID]
	return exists
}

// Forget drops a conversation's timeline.
func (s *MessageStore) Forget(chatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timelines, chatID)
	delete(s.live, chatID)
}

func copyMessage(chatID string, msg *entity.Message) *entity.Message {
	out := *msg
	if out.ChatID == "" {
		out.ChatID = chatID
	}
	return &out
}
