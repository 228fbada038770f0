package usecase

import (
	"sort"
	"sync"
	"time"
)

type typingKey struct {
	chatID string
	userID string
}

// TypingTracker records, per conversation, which counterparts are typing.
// Entries leave on an explicit stop. With a non-zero expiry an entry also
// leaves once no renewal arrives within that period.
type TypingTracker struct {
	mu     sync.Mutex
	expiry time.Duration
	typing map[string]map[string]struct{}
	timers map[typingKey]*time.Timer
	gens   map[typingKey]uint64
	seq    uint64
}

func NewTypingTracker(expiry time.Duration) *TypingTracker {
	return &TypingTracker{
		expiry: expiry,
		typing: make(map[string]map[string]struct{}),
		timers: make(map[typingKey]*time.Timer),
		gens:   make(map[typingKey]uint64),
	}
}

func (t *TypingTracker) SetTyping(chatID, userID string, isTyping bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := typingKey{chatID, userID}
	t.stopTimerLocked(key)

	if !isTyping {
		t.removeLocked(key)
		return
	}

	users, ok := t.typing[chatID]
	if !ok {
		users = make(map[string]struct{})
		t.typing[chatID] = users
	}
	users[userID] = struct{}{}

	if t.expiry > 0 {
		t.seq++
		gen := t.seq
		t.gens[key] = gen
		t.timers[key] = time.AfterFunc(t.expiry, func() { t.expire(key, gen) })
	}
}

func (t *TypingTracker) expire(key typingKey, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if current, ok := t.gens[key]; !ok || current != gen {
		return
	}
	delete(t.timers, key)
	delete(t.gens, key)
	t.removeLocked(key)
}

func (t *TypingTracker) IsTyping(chatID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.typing[chatID][userID]
	return ok
}

// Typing returns the users typing in chatID, sorted.
func (t *TypingTracker) Typing(chatID string) []string {
	t.mu.Lock()
	ids := make([]string, 0, len(t.typing[chatID]))
	for id := range t.typing[chatID] {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// ClearChat forgets every typing entry for chatID.
func (t *TypingTracker) ClearChat(chatID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for userID := range t.typing[chatID] {
		t.stopTimerLocked(typingKey{chatID, userID})
	}
	delete(t.typing, chatID)
}

// Stop cancels every pending expiry.
func (t *TypingTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key := range t.timers {
		t.stopTimerLocked(key)
	}
}

func (t *TypingTracker) stopTimerLocked(key typingKey) {
	if timer, ok := t.timers[key]; ok {
		timer.Stop()
		delete(t.timers, key)
	}
	delete(t.gens, key)
}

func (t *TypingTracker) removeLocked(key typingKey) {
	users, ok := t.typing[key.chatID]
	if !ok {
		return
	}
	delete(users, key.userID)
	if len(users) == 0 {
		delete(t.typing, key.chatID)
	}
}
