package tasks

import (
	"time"

	"taskcompass/internal/model"
)

// SameCalendarDay reports whether two instants fall on the same calendar day
// in the location of a.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

// OverdueTasks selects the incomplete tasks whose due date has passed.
// Completed tasks are never overdue, regardless of date.
func OverdueTasks(visible []model.Task, now time.Time) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range visible {
		if !t.Completed && t.DueDate.Before(now) {
			out = append(out, t)
		}
	}
	return out
}

// TasksOn selects the tasks due on the given calendar day (the schedule view).
func TasksOn(visible []model.Task, day time.Time) []model.Task {
	out := make([]model.Task, 0)
	for _, t := range visible {
		if SameCalendarDay(day, t.DueDate) {
			out = append(out, t)
		}
	}
	return out
}

// TodayTasks selects the tasks due today.
func TodayTasks(visible []model.Task, now time.Time) []model.Task {
	return TasksOn(visible, now)
}

// DayStat is one point of the progress-review series.
type DayStat struct {
	Date      string  `json:"date"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Rate      float64 `json:"rate"`
}

// DailyStats builds the per-day completion series for the last `days` days,
// ending today. Days without tasks have a zero rate.
func DailyStats(visible []model.Task, now time.Time, days int) []DayStat {
	stats := make([]DayStat, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		var completed, total int
		for _, t := range visible {
			if SameCalendarDay(day, t.DueDate) {
				total++
				if t.Completed {
					completed++
				}
			}
		}
		stat := DayStat{
			Date:      day.Format("Jan 02"),
			Completed: completed,
			Total:     total,
		}
		if total > 0 {
			stat.Rate = float64(completed) / float64(total) * 100
		}
		stats = append(stats, stat)
	}
	return stats
}

// CompletedSince counts the tasks completed at or after the given instant
// (the dashboard's weekly summary).
func CompletedSince(visible []model.Task, since time.Time) int {
	var n int
	for _, t := range visible {
		if t.Completed && t.CompletedAt != nil && !t.CompletedAt.Before(since) {
			n++
		}
	}
	return n
}
