package entity

import "time"

type Participant struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Chat is a two-party conversation summary as served by the chat list API.
type Chat struct {
	ID           string         `json:"id"`
	Participants []Participant  `json:"participants"`
	Product      *ProductRef    `json:"product,omitempty"`
	LastMessage  *Message       `json:"last_message,omitempty"`
	UnreadCount  map[string]int `json:"unread_count"`
	LastActivity time.Time      `json:"last_activity"`
}

// Counterpart returns the participant that is not userID.
func (c *Chat) Counterpart(userID string) (Participant, bool) {
	for _, p := range c.Participants {
		if p.UserID != userID {
			return p, true
		}
	}
	return Participant{}, false
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (c *Chat) Unread(userID string) int {
	if c.UnreadCount == nil {
		return 0
	}
	return c.UnreadCount[userID]
}

// Clone returns a copy safe to hand out of a cache.
func (c *Chat) Clone() *Chat {
	out := *c
	out.Participants = append([]Participant(nil), c.Participants...)
	if c.Product != nil {
		p := *c.Product
		out.Product = &p
	}
	if c.LastMessage != nil {
		m := *c.LastMessage
		out.LastMessage = &m
	}
	out.UnreadCount = make(map[string]int, len(c.UnreadCount))
	for k, v := range c.UnreadCount {
		out.UnreadCount[k] = v
	}
	return &out
}
