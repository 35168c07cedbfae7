package model

import "time"

// Notification is an operator-visible alert, currently only low-stock
// warnings. Unread notifications are deduplicated by message text.
type Notification struct {
	CreatedAt time.Time
	Message   string
	ID        int64
	Read      bool
}
