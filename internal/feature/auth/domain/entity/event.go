package entity

import "time"

// AccountEventType identifies an account lifecycle event.
type AccountEventType string

const (
	EventUserRegistered AccountEventType = "user.registered"
	EventUserCreated    AccountEventType = "user.created"
	EventUserLinked     AccountEventType = "user.linked"
)

// AccountEvent is published after an account mutation has been committed.
type AccountEvent struct {
	Type       AccountEventType `json:"type"`
	UserID     uint             `json:"user_id"`
	Email      string           `json:"email"`
	AuthMethod AuthMethod       `json:"auth_method"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewAccountEvent builds an event for u stamped with the current time.
func NewAccountEvent(t AccountEventType, u *User) AccountEvent {
	return AccountEvent{
		Type:       t,
		UserID:     u.ID,
		Email:      u.Email,
		AuthMethod: u.AuthMethod,
		OccurredAt: time.Now().UTC(),
	}
}
