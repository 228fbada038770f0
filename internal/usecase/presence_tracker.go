package usecase

import (
	"sort"
	"sync"
)

// PresenceTracker is the set of counterpart user ids currently online. It
// trusts the last event received; staleness is the server's concern.
type PresenceTracker struct {
	mu     sync.RWMutex
	online map[string]struct{}
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{online: make(map[string]struct{})}
}

func (p *PresenceTracker) SetOnline(userID string) {
	p.mu.Lock()
	p.online[userID] = struct{}{}
	p.mu.Unlock()
}

// SetOffline removes userID. Unknown ids are ignored.
func (p *PresenceTracker) SetOffline(userID string) {
	p.mu.Lock()
	delete(p.online, userID)
	p.mu.Unlock()
}

func (p *PresenceTracker) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[userID]
	return ok
}

// Seed merges a snapshot of online users into the set.
func (p *PresenceTracker) Seed(userIDs []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, id := range userIDs {
		if id != "" {
			p.online[id] = struct{}{}
		}
	}
}

// Online returns the online ids, sorted.
func (p *PresenceTracker) Online() []string {
	p.mu.RLock()
	ids := make([]string, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	p.mu.RUnlock()

	sort.Strings(ids)
	return ids
}
