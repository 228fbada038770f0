package entity

// PresenceStatus is the three-state status the local user reports about
// itself. Counterparts are only ever observed as online or not.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusAway    PresenceStatus = "away"
	StatusOffline PresenceStatus = "offline"
)

type OnlineUser struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
}
