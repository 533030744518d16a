package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind distinguishes the three transitions the differ reports.
type NotificationKind string

const (
	NotifyAssignment NotificationKind = "assignment"
	NotifyCompletion NotificationKind = "completion"
	NotifyProgress   NotificationKind = "progress"
)

// Notification is one decided event, addressed to a single recipient uid.
// TaskID doubles as the delivery tag: channels replace an earlier pending
// notification carrying the same tag instead of stacking a duplicate.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	TaskID    uuid.UUID        `json:"taskId"`
	Recipient string           `json:"recipient"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Tag returns the deduplication tag for OS-level delivery.
func (n Notification) Tag() string {
	return string(n.Kind) + ":" + n.TaskID.String()
}
