package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskcompass/internal/model"
	"taskcompass/internal/tasks"
	"taskcompass/internal/users"
)

type TaskHandler struct {
	tasks *tasks.Service
	users *users.Service

	// onChange runs after every successful mutation so the notification
	// differ sees the new state without waiting for the next poll.
	onChange func()
}

func NewTaskHandler(taskSvc *tasks.Service, userSvc *users.Service, onChange func()) *TaskHandler {
	return &TaskHandler{tasks: taskSvc, users: userSvc, onChange: onChange}
}

func (h *TaskHandler) changed() {
	if h.onChange != nil {
		h.onChange()
	}
}

type TaskRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Priority    string    `json:"priority"`
	DueDate     time.Time `json:"dueDate" binding:"required"`
	AssignedTo  []string  `json:"assignedTo"`
	Notes       string    `json:"notes"`
}

type TaskUpdateRequest struct {
	Title                   *string    `json:"title"`
	Description             *string    `json:"description"`
	Category                *string    `json:"category"`
	Priority                *string    `json:"priority"`
	DueDate                 *time.Time `json:"dueDate"`
	AssignedTo              []string   `json:"assignedTo"`
	Completed               *bool      `json:"completed"`
	Progress                *int       `json:"progress"`
	Notes                   *string    `json:"notes"`
	AdditionalTimeAllocated *bool      `json:"additionalTimeAllocated"`
}

// Create godoc
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TaskRequest true "Task details"
// @Success 201 {object} model.Task
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.tasks.Add(c.Request.Context(), user, tasks.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    model.Category(req.Category),
		Priority:    model.Priority(req.Priority),
		DueDate:     req.DueDate,
		AssignedTo:  req.AssignedTo,
		Notes:       req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.changed()
	c.JSON(http.StatusCreated, task)
}

// List godoc
// @Summary List the tasks visible to the caller, sorted
// @Description Incomplete tasks first, then priority descending, then due date.
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param overdue query bool false "Only overdue tasks"
// @Success 200 {array} model.Task
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	visible := tasks.VisibleTasks(h.tasks.Snapshot(), user)
	if c.Query("overdue") == "true" {
		visible = tasks.OverdueTasks(visible, time.Now())
	}
	c.JSON(http.StatusOK, tasks.SortTasks(visible))
}

// GetByID godoc
// @Summary Fetch one task
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Success 200 {object} model.Task
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.tasks.Get(user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update godoc
// @Summary Update a task
// @Description The admin and the creator may edit anything; the lead assignee
// @Description may report progress, notes and completion.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Param request body TaskUpdateRequest true "Fields to change"
// @Success 200 {object} model.Task
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	patch := tasks.TaskPatch{
		Title:                   req.Title,
		Description:             req.Description,
		DueDate:                 req.DueDate,
		AssignedTo:              req.AssignedTo,
		Completed:               req.Completed,
		Progress:                req.Progress,
		Notes:                   req.Notes,
		AdditionalTimeAllocated: req.AdditionalTimeAllocated,
	}
	if req.Category != nil {
		cat := model.Category(*req.Category)
		patch.Category = &cat
	}
	if req.Priority != nil {
		pri := model.Priority(*req.Priority)
		patch.Priority = &pri
	}

	task, err := h.tasks.Update(c.Request.Context(), user, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	h.changed()
	c.JSON(http.StatusOK, task)
}

// Toggle godoc
// @Summary Flip a task's completion state
// @Description On admin-created team tasks only the administrator or the lead
// @Description assignee (first in the assignment list) may toggle.
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task id"
// @Success 200 {object} model.Task
// @Router /tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.tasks.Toggle(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.changed()
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary Delete a task (admin or creator only)
// @Tags Tasks
// @Security BearerAuth
// @Param id path string true "Task id"
// @Success 204
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}
	h.changed()
	c.Status(http.StatusNoContent)
}

type exportDocument struct {
	Tasks []model.Task `json:"tasks"`
}

// Export godoc
// @Summary Download the full task list as a JSON backup
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} exportDocument
// @Router /tasks/export [get]
func (h *TaskHandler) Export(c *gin.Context) {
	if _, ok := currentUser(c, h.users); !ok {
		return
	}
	filename := fmt.Sprintf("task-compass-backup-%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, exportDocument{Tasks: h.tasks.Snapshot()})
}

// Import godoc
// @Summary Replace the task list from a JSON backup (admin only)
// @Tags Tasks
// @Accept json
// @Security BearerAuth
// @Param request body exportDocument true "Backup document"
// @Success 204
// @Router /tasks/import [post]
func (h *TaskHandler) Import(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var doc exportDocument
	if err := c.ShouldBindJSON(&doc); err != nil || doc.Tasks == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid backup document"})
		return
	}

	if err := h.tasks.ReplaceAll(c.Request.Context(), user, doc.Tasks); err != nil {
		respondError(c, err)
		return
	}
	h.changed()
	c.Status(http.StatusNoContent)
}
