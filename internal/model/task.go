package model

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies a task for filtering and display.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryFitness  Category = "Fitness"
	CategoryHealth   Category = "Health"
	CategoryUrgent   Category = "Urgent"
	CategoryOther    Category = "Other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryFitness, CategoryHealth, CategoryUrgent, CategoryOther:
		return true
	}
	return false
}

// Priority drives notification severity and sort order.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Weight returns the sort weight of a priority (High=3, Medium=2, Low=1).
// Unknown priorities weigh 0 and sort last.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// MeSentinel is the legacy self-assignment placeholder. New tasks store the
// creator's resolved uid instead, but imported data may still carry it.
const MeSentinel = "Me"

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	Category    Category  `gorm:"not null" json:"category"`
	Priority    Priority  `gorm:"not null" json:"priority"`
	DueDate     time.Time `gorm:"not null;index" json:"dueDate"`

	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CompletedBy string     `json:"completedBy,omitempty"`

	// Progress is 0-100 and is kept synchronized with Completed:
	// progress reaches 100 exactly when the task is completed.
	Progress int `json:"progress"`

	// AssignedTo is never empty; the first entry is the lead assignee,
	// the only non-admin allowed to toggle admin-created tasks.
	AssignedTo []string `gorm:"serializer:json" json:"assignedTo"`

	CreatedBy string `gorm:"not null;index" json:"createdBy"`

	// Notes carries the progress note the lead assignee reports back.
	Notes string `json:"notes,omitempty"`

	AdditionalTimeAllocated bool `json:"additionalTimeAllocated,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LeadAssignee returns the first assignee, or the legacy sentinel when the
// assignment list is somehow empty.
func (t *Task) LeadAssignee() string {
	if len(t.AssignedTo) == 0 {
		return MeSentinel
	}
	return t.AssignedTo[0]
}

// Clone returns a deep copy; the assignment slice is not shared.
func (t Task) Clone() Task {
	c := t
	c.AssignedTo = append([]string(nil), t.AssignedTo...)
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return c
}
