package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskcompass/internal/model"
	"taskcompass/internal/report"
	"taskcompass/internal/tasks"
	"taskcompass/internal/users"
)

type DashboardHandler struct {
	tasks   *tasks.Service
	users   *users.Service
	reports *report.Generator
}

func NewDashboardHandler(taskSvc *tasks.Service, userSvc *users.Service, reports *report.Generator) *DashboardHandler {
	return &DashboardHandler{tasks: taskSvc, users: userSvc, reports: reports}
}

type DashboardResponse struct {
	CompletedToday int          `json:"completedToday"`
	TotalToday     int          `json:"totalToday"`
	Progress       float64      `json:"progress"`
	WeeklyDone     int          `json:"weeklyDone"`
	OverdueCount   int          `json:"overdueCount"`
	Overdue        []model.Task `json:"overdue"`
	Today          []model.Task `json:"today"`
}

// Summary godoc
// @Summary Today's dashboard: daily focus, weekly summary and overdue tasks
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DashboardResponse
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	now := time.Now()
	visible := tasks.VisibleTasks(h.tasks.Snapshot(), user)
	today := tasks.TodayTasks(visible, now)
	overdue := tasks.OverdueTasks(visible, now)

	var completed int
	for _, t := range today {
		if t.Completed {
			completed++
		}
	}
	resp := DashboardResponse{
		CompletedToday: completed,
		TotalToday:     len(today),
		WeeklyDone:     tasks.CompletedSince(visible, now.AddDate(0, 0, -7)),
		OverdueCount:   len(overdue),
		Overdue:        tasks.SortTasks(overdue),
		Today:          tasks.SortTasks(today),
	}
	if resp.TotalToday > 0 {
		resp.Progress = float64(resp.CompletedToday) / float64(resp.TotalToday) * 100
	}
	c.JSON(http.StatusOK, resp)
}

type ScheduleResponse struct {
	Date          string       `json:"date"`
	AdminTasks    []model.Task `json:"adminTasks"`
	PersonalTasks []model.Task `json:"personalTasks"`
}

// Schedule godoc
// @Summary Tasks for one calendar day, split into team and personal groups
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} ScheduleResponse
// @Router /schedule [get]
func (h *DashboardHandler) Schedule(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	visible := tasks.VisibleTasks(h.tasks.Snapshot(), user)
	dayTasks := tasks.TasksOn(visible, day)

	resp := ScheduleResponse{
		Date:          day.Format("2006-01-02"),
		AdminTasks:    []model.Task{},
		PersonalTasks: []model.Task{},
	}
	for _, t := range tasks.SortTasks(dayTasks) {
		if t.CreatedBy == model.AdminUID {
			resp.AdminTasks = append(resp.AdminTasks, t)
		} else {
			resp.PersonalTasks = append(resp.PersonalTasks, t)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Progress godoc
// @Summary Per-day completion series for the progress charts
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param days query int false "Series length in days (1-90, default 7)"
// @Success 200 {array} tasks.DayStat
// @Router /progress [get]
func (h *DashboardHandler) Progress(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	days := parseDays(c.DefaultQuery("days", "7"))
	visible := tasks.VisibleTasks(h.tasks.Snapshot(), user)
	c.JSON(http.StatusOK, tasks.DailyStats(visible, time.Now(), days))
}

// ProgressReport godoc
// @Summary Download the progress review as a PDF
// @Tags Dashboard
// @Produce application/pdf
// @Security BearerAuth
// @Param days query int false "Series length in days (1-90, default 7)"
// @Success 200 {file} binary
// @Router /progress/report [get]
func (h *DashboardHandler) ProgressReport(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	now := time.Now()
	days := parseDays(c.DefaultQuery("days", "7"))
	visible := tasks.VisibleTasks(h.tasks.Snapshot(), user)
	stats := tasks.DailyStats(visible, now, days)
	overdue := tasks.SortTasks(tasks.OverdueTasks(visible, now))

	pdf, err := h.reports.ProgressReport(user.DisplayName, stats, overdue, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="progress-review.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func parseDays(raw string) int {
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return 7
	}
	if days > 90 {
		return 90
	}
	return days
}
