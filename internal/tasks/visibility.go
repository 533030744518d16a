package tasks

import (
	"sort"

	"taskcompass/internal/model"
)

// AssignedToUser reports whether the task's assignment list refers to the
// user. Entries match on display name, email, uid or username; the legacy
// "Me" sentinel only matches the task's own creator.
func AssignedToUser(t model.Task, u *model.UserAccount) bool {
	if u == nil {
		return false
	}
	for _, entry := range t.AssignedTo {
		if entry == model.MeSentinel {
			if t.CreatedBy == u.UID {
				return true
			}
			continue
		}
		if u.Matches(entry) {
			return true
		}
	}
	return false
}

// Visible reports whether a single task belongs in the user's view: the user
// created it, the user is an admin looking at an admin-created team task, or
// the user appears in the assignment list.
func Visible(t model.Task, u *model.UserAccount) bool {
	if u == nil {
		return false
	}
	if t.CreatedBy == u.UID {
		return true
	}
	if u.IsAdmin() && t.CreatedBy == model.AdminUID {
		return true
	}
	return AssignedToUser(t, u)
}

// VisibleTasks filters the full task list down to the user's view.
// No ordering is guaranteed; callers sort separately.
func VisibleTasks(all []model.Task, u *model.UserAccount) []model.Task {
	out := make([]model.Task, 0, len(all))
	if u == nil {
		return out
	}
	for _, t := range all {
		if Visible(t, u) {
			out = append(out, t)
		}
	}
	return out
}

// SortTasks returns a sorted copy: incomplete tasks first, then priority
// descending (High=3, Medium=2, Low=1), then due date ascending.
func SortTasks(list []model.Task) []model.Task {
	// Copy into a fresh non-nil slice so an empty list still serializes
	// as [] rather than null.
	sorted := make([]model.Task, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if wa, wb := a.Priority.Weight(), b.Priority.Weight(); wa != wb {
			return wa > wb
		}
		return a.DueDate.Before(b.DueDate)
	})
	return sorted
}
