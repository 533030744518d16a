package tasks

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskcompass/internal/model"
)

// Store is the durable backend behind the in-memory task list. The local
// snapshot is the source of truth; the store is kept eventually consistent
// with it, not the other way around.
type Store interface {
	LoadTasks(ctx context.Context) ([]model.Task, error)
	SaveTasks(ctx context.Context, tasks []model.Task) error
}

// Service holds the authoritative in-memory task list and applies every
// mutation under one lock, so handlers observe a consistent snapshot.
type Service struct {
	mu    sync.RWMutex
	store Store
	tasks []model.Task
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// TaskInput carries the caller-supplied fields for a new task.
type TaskInput struct {
	Title       string
	Description string
	Category    model.Category
	Priority    model.Priority
	DueDate     time.Time
	AssignedTo  []string
	Notes       string
}

// TaskPatch updates a task in place; nil fields are left untouched.
type TaskPatch struct {
	Title                   *string
	Description             *string
	Category                *model.Category
	Priority                *model.Priority
	DueDate                 *time.Time
	AssignedTo              []string
	Completed               *bool
	Progress                *int
	Notes                   *string
	AdditionalTimeAllocated *bool
}

// Refresh replaces the snapshot wholesale from the durable store. A failed
// load is logged and the last good snapshot survives; callers are never
// interrupted. Returns the resulting snapshot.
func (s *Service) Refresh(ctx context.Context) []model.Task {
	loaded, err := s.store.LoadTasks(ctx)
	if err != nil {
		log.Printf("task refresh failed, keeping cached snapshot: %v", err)
		return s.Snapshot()
	}
	for i := range loaded {
		normalize(&loaded[i], s.now())
	}

	s.mu.Lock()
	s.tasks = loaded
	s.mu.Unlock()
	return s.Snapshot()
}

// Snapshot returns a deep copy of the full task list.
func (s *Service) Snapshot() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Get returns a task by id, scoped to the user's visibility.
func (s *Service) Get(u *model.UserAccount, id uuid.UUID) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			if !Visible(t, u) {
				return model.Task{}, ErrTaskNotFound
			}
			return t.Clone(), nil
		}
	}
	return model.Task{}, ErrTaskNotFound
}

// Add creates a task with defaults applied: a fresh id, category Other,
// medium priority and self-assignment. The legacy "Me" sentinel is resolved
// to the creator's uid at this point so downstream comparisons never see it.
func (s *Service) Add(ctx context.Context, u *model.UserAccount, in TaskInput) (model.Task, error) {
	if u == nil {
		return model.Task{}, ErrPermissionDenied
	}
	if in.Title == "" {
		return model.Task{}, fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	category := in.Category
	if category == "" {
		category = model.CategoryOther
	}
	if !category.Valid() {
		return model.Task{}, fmt.Errorf("%w: unknown category %q", ErrInvalidTask, in.Category)
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if priority.Weight() == 0 {
		return model.Task{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, in.Priority)
	}

	assigned := make([]string, 0, len(in.AssignedTo))
	for _, entry := range in.AssignedTo {
		if entry == "" {
			continue
		}
		if entry == model.MeSentinel {
			entry = u.UID
		}
		assigned = append(assigned, entry)
	}
	if len(assigned) == 0 {
		assigned = []string{u.UID}
	}

	now := s.now()
	task := model.Task{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Category:    category,
		Priority:    priority,
		DueDate:     in.DueDate,
		AssignedTo:  assigned,
		CreatedBy:   u.UID,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.persistLocked(ctx)
	s.mu.Unlock()
	return task.Clone(), nil
}

// Toggle flips completion. On admin-created team tasks only the admin or the
// lead assignee may toggle; personal tasks are toggled by their creator or
// lead assignee. Completion metadata is stamped and cleared here so the
// completed/progress invariant holds after every call.
func (s *Service) Toggle(ctx context.Context, u *model.UserAccount, id uuid.UUID) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.findLocked(id)
	if t == nil {
		return model.Task{}, ErrTaskNotFound
	}
	if !canToggle(t, u) {
		return model.Task{}, ErrPermissionDenied
	}

	now := s.now()
	if t.Completed {
		clearCompletion(t)
	} else {
		stampCompletion(t, u, now)
	}
	t.UpdatedAt = now
	s.persistLocked(ctx)
	return t.Clone(), nil
}

// Update applies a patch. The admin and the creator may edit anything; the
// lead assignee may only report back (progress, notes, completion and the
// extra-time flag). The completed/progress invariant is re-established after
// the patch: progress hitting 100 implies completion, and explicitly marking
// a task incomplete reverses its completion metadata.
func (s *Service) Update(ctx context.Context, u *model.UserAccount, id uuid.UUID, p TaskPatch) (model.Task, error) {
	if u == nil {
		return model.Task{}, ErrPermissionDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.findLocked(id)
	if t == nil {
		return model.Task{}, ErrTaskNotFound
	}

	editor := u.IsAdmin() || t.CreatedBy == u.UID
	lead := u.Matches(t.LeadAssignee())
	if !editor && !lead {
		return model.Task{}, ErrPermissionDenied
	}
	if !editor {
		// Lead assignees report progress; they do not restructure the task.
		if p.Title != nil || p.Description != nil || p.Category != nil ||
			p.Priority != nil || p.DueDate != nil || p.AssignedTo != nil {
			return model.Task{}, ErrPermissionDenied
		}
	}

	if p.Title != nil {
		if *p.Title == "" {
			return model.Task{}, fmt.Errorf("%w: title is required", ErrInvalidTask)
		}
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		if !p.Category.Valid() {
			return model.Task{}, fmt.Errorf("%w: unknown category %q", ErrInvalidTask, *p.Category)
		}
		t.Category = *p.Category
	}
	if p.Priority != nil {
		if p.Priority.Weight() == 0 {
			return model.Task{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidTask, *p.Priority)
		}
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.AssignedTo != nil {
		assigned := make([]string, 0, len(p.AssignedTo))
		for _, entry := range p.AssignedTo {
			if entry == "" {
				continue
			}
			if entry == model.MeSentinel {
				entry = u.UID
			}
			assigned = append(assigned, entry)
		}
		if len(assigned) == 0 {
			return model.Task{}, fmt.Errorf("%w: assignment list cannot be empty", ErrInvalidTask)
		}
		t.AssignedTo = assigned
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.AdditionalTimeAllocated != nil {
		t.AdditionalTimeAllocated = *p.AdditionalTimeAllocated
	}

	now := s.now()
	if p.Completed != nil {
		if *p.Completed && !t.Completed {
			stampCompletion(t, u, now)
		} else if !*p.Completed && t.Completed {
			clearCompletion(t)
		}
	}
	if p.Progress != nil {
		v := *p.Progress
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		t.Progress = v
		if v == 100 && !t.Completed {
			stampCompletion(t, u, now)
		} else if v < 100 && t.Completed {
			clearCompletion(t)
			t.Progress = v
		}
	}

	t.UpdatedAt = now
	s.persistLocked(ctx)
	return t.Clone(), nil
}

// Delete removes a task. Only the admin or the creator may delete; anyone
// else gets ErrPermissionDenied and no state change.
func (s *Service) Delete(ctx context.Context, u *model.UserAccount, id uuid.UUID) error {
	if u == nil {
		return ErrPermissionDenied
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID != id {
			continue
		}
		if !u.IsAdmin() && t.CreatedBy != u.UID {
			return ErrPermissionDenied
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		s.persistLocked(ctx)
		return nil
	}
	return ErrTaskNotFound
}

// ReplaceAll swaps in an imported task list after normalizing it, then
// persists. Used by the backup import endpoint. Replacing the whole list
// discards every user's tasks at once, so it is reserved for the admin.
func (s *Service) ReplaceAll(ctx context.Context, u *model.UserAccount, list []model.Task) error {
	if !u.IsAdmin() {
		return ErrPermissionDenied
	}
	now := s.now()
	imported := make([]model.Task, len(list))
	for i, t := range list {
		c := t.Clone()
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		normalize(&c, now)
		imported[i] = c
	}

	s.mu.Lock()
	s.tasks = imported
	s.persistLocked(ctx)
	s.mu.Unlock()
	return nil
}

// findLocked returns a pointer into the live slice; callers hold s.mu.
func (s *Service) findLocked(id uuid.UUID) *model.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

// persistLocked writes the snapshot to the durable store, best effort.
// A failed write never rolls back the in-memory state.
func (s *Service) persistLocked(ctx context.Context) {
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	if err := s.store.SaveTasks(ctx, out); err != nil {
		log.Printf("task sync failed, keeping local snapshot: %v", err)
	}
}

func canToggle(t *model.Task, u *model.UserAccount) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	if t.CreatedBy == model.AdminUID {
		// Team task: only the lead assignee reports completion.
		return u.Matches(t.LeadAssignee())
	}
	return t.CreatedBy == u.UID || u.Matches(t.LeadAssignee())
}

func stampCompletion(t *model.Task, u *model.UserAccount, now time.Time) {
	t.Completed = true
	t.Progress = 100
	t.CompletedAt = &now
	t.CompletedBy = displayIdentity(u)
}

func clearCompletion(t *model.Task) {
	t.Completed = false
	t.CompletedAt = nil
	t.CompletedBy = ""
	if t.Progress == 100 {
		t.Progress = 0
	}
}

func displayIdentity(u *model.UserAccount) string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.UID
}

// normalize repairs loaded or imported tasks: the assignment list is never
// empty and completion state stays consistent with progress.
func normalize(t *model.Task, now time.Time) {
	if len(t.AssignedTo) == 0 {
		t.AssignedTo = []string{t.CreatedBy}
	}
	if t.Completed {
		t.Progress = 100
		if t.CompletedAt == nil {
			at := now
			t.CompletedAt = &at
		}
	} else if t.Progress == 100 {
		t.Completed = true
		at := now
		t.CompletedAt = &at
		if t.CompletedBy == "" {
			t.CompletedBy = t.CreatedBy
		}
	}
	if !t.Completed {
		t.CompletedAt = nil
		t.CompletedBy = ""
	}
}
