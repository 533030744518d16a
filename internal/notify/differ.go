package notify

import (
	"fmt"
	"time"

	"taskcompass/internal/model"
	"taskcompass/internal/tasks"
)

// TaskState is the slice of task state the differ compares across refresh
// cycles. Transitions are detected against this, not current values alone,
// since polling may observe intermediate states.
type TaskState struct {
	Completed bool   `json:"completed"`
	Notes     string `json:"notes"`
	Progress  int    `json:"progress"`
}

// TrackingState is the per-user notification memory. It persists across
// restarts (see StateStore) so a reload does not re-fire old notifications.
type TrackingState struct {
	NotifiedAssignments map[string]bool      `json:"notifiedAssignments"`
	NotifiedCompletions map[string]bool      `json:"notifiedCompletions"`
	LastKnown           map[string]TaskState `json:"lastKnown"`
}

func NewTrackingState() *TrackingState {
	return &TrackingState{
		NotifiedAssignments: make(map[string]bool),
		NotifiedCompletions: make(map[string]bool),
		LastKnown:           make(map[string]TaskState),
	}
}

// ensure repairs nil maps after a JSON round trip.
func (st *TrackingState) ensure() {
	if st.NotifiedAssignments == nil {
		st.NotifiedAssignments = make(map[string]bool)
	}
	if st.NotifiedCompletions == nil {
		st.NotifiedCompletions = make(map[string]bool)
	}
	if st.LastKnown == nil {
		st.LastKnown = make(map[string]TaskState)
	}
}

// Diff evaluates one refresh cycle of the FULL task list (not merely the
// visible subset) for a single user, mutating the tracking state and
// returning the notifications that should fire. Calling it again with an
// unchanged task list yields nothing.
//
// Rules, applied independently per task in one pass:
//  1. assignment: the task is assigned to the user, incomplete, not created
//     by the user, and not yet announced.
//  2. completion (admin): an admin-created task transitioned to completed
//     since the last observation, was not yet announced, and was not
//     completed by the admin themselves.
//  3. progress (admin): an admin-created, still incomplete task whose notes
//     or progress changed since the last observation. Every distinct change
//     re-fires; identical repeats do not.
//
// Afterwards the last-known snapshot is replaced wholesale.
func (st *TrackingState) Diff(all []model.Task, u *model.UserAccount, now time.Time) []model.Notification {
	st.ensure()

	var events []model.Notification
	next := make(map[string]TaskState, len(all))

	for _, t := range all {
		id := t.ID.String()
		next[id] = TaskState{Completed: t.Completed, Notes: t.Notes, Progress: t.Progress}
		if u == nil {
			continue
		}

		if !t.Completed && t.CreatedBy != u.UID &&
			tasks.AssignedToUser(t, u) && !st.NotifiedAssignments[id] {
			events = append(events, assignmentNotification(t, u, now))
			st.NotifiedAssignments[id] = true
		}

		if !u.IsAdmin() || t.CreatedBy != model.AdminUID {
			continue
		}
		prev, seen := st.LastKnown[id]

		if t.Completed {
			if (!seen || !prev.Completed) && !st.NotifiedCompletions[id] && !u.Matches(t.CompletedBy) {
				events = append(events, completionNotification(t, u, now))
				st.NotifiedCompletions[id] = true
			}
		} else {
			// A reopened task may complete again later; forget the
			// earlier announcement so the re-completion fires fresh.
			delete(st.NotifiedCompletions, id)

			if t.Notes != prev.Notes || t.Progress != prev.Progress {
				events = append(events, progressNotification(t, u, now))
			}
		}
	}

	st.LastKnown = next
	return events
}

func assignmentNotification(t model.Task, u *model.UserAccount, now time.Time) model.Notification {
	return model.Notification{
		Kind:      model.NotifyAssignment,
		TaskID:    t.ID,
		Recipient: u.UID,
		Title:     "New Task Assigned",
		Body:      fmt.Sprintf("%q has been assigned to you (due %s)", t.Title, t.DueDate.Format("Jan 2, 15:04")),
		CreatedAt: now,
	}
}

func completionNotification(t model.Task, u *model.UserAccount, now time.Time) model.Notification {
	by := t.CompletedBy
	if by == "" {
		by = t.LeadAssignee()
	}
	return model.Notification{
		Kind:      model.NotifyCompletion,
		TaskID:    t.ID,
		Recipient: u.UID,
		Title:     "Task Completed",
		Body:      fmt.Sprintf("%s marked %q as complete", by, t.Title),
		CreatedAt: now,
	}
}

func progressNotification(t model.Task, u *model.UserAccount, now time.Time) model.Notification {
	body := fmt.Sprintf("%q is at %d%%", t.Title, t.Progress)
	if t.Notes != "" {
		body += ": " + t.Notes
	}
	return model.Notification{
		Kind:      model.NotifyProgress,
		TaskID:    t.ID,
		Recipient: u.UID,
		Title:     "Progress Update",
		Body:      body,
		CreatedAt: now,
	}
}
