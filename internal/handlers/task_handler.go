package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"todo-api/internal/apperrors"
	"todo-api/internal/forms"
	"todo-api/internal/middleware"
	"todo-api/internal/models"
	"todo-api/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type TaskHandler struct {
	tasks *services.TaskService
	log   *logrus.Logger
}

func NewTaskHandler(tasks *services.TaskService, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

func parseID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Validation("invalid id: "+raw, nil)
	}
	return uint(id), nil
}

/*
*
GetTasks handles GET /tasks
Query params: status (all|active|completed|overdue), q (search text),
sort (asc|desc on createdAt, default desc).
*/
func (h *TaskHandler) GetTasks(c *gin.Context) {
	const op = "handlers.GetTasks"

	status, ok := models.ParseStatusFilter(c.Query("status"))
	if !ok {
		respondError(c, h.log, op, apperrors.Validation("status must be one of all, active, completed, overdue", nil))
		return
	}
	filter := models.TaskFilter{
		Status:    status,
		Query:     c.Query("q"),
		Ascending: strings.ToLower(c.DefaultQuery("sort", "desc")) == "asc",
	}

	tasks, err := h.tasks.List(c.Request.Context(), middleware.Identity(c), filter)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetTaskByID handles GET /tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	const op = "handlers.GetTaskByID"

	id, err := parseID(c)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	const op = "handlers.CreateTask"

	form := forms.NewCreateTaskForm()
	if err := forms.ParseAndValidate(c, form); err != nil {
		respondError(c, h.log, op, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), middleware.Identity(c), form.Task())
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /tasks/:id. The body is validated before the task is
// looked up, so a bad body on an unknown id is a 400.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	const op = "handlers.UpdateTask"

	id, err := parseID(c)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	form := forms.NewUpdateTaskForm()
	if err := forms.ParseAndValidate(c, form); err != nil {
		respondError(c, h.log, op, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), middleware.Identity(c), id, form.Patch)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/:id and answers with the removed task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	const op = "handlers.DeleteTask"

	id, err := parseID(c)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	task, err := h.tasks.Delete(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetStats handles GET /tasks/stats
func (h *TaskHandler) GetStats(c *gin.Context) {
	stats, err := h.tasks.Stats(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, h.log, "handlers.GetStats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportTasks handles GET /tasks/export
func (h *TaskHandler) ExportTasks(c *gin.Context) {
	tasks, err := h.tasks.Export(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, h.log, "handlers.ExportTasks", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tasks.json"`)
	c.IndentedJSON(http.StatusOK, tasks)
}

// ImportTasks handles POST /tasks/import. Every element is validated before
// anything is stored.
func (h *TaskHandler) ImportTasks(c *gin.Context) {
	const op = "handlers.ImportTasks"

	form := forms.NewImportTasksForm()
	if err := forms.ParseAndValidate(c, form); err != nil {
		respondError(c, h.log, op, err)
		return
	}

	created, err := h.tasks.Import(c.Request.Context(), middleware.Identity(c), form.Tasks)
	if err != nil {
		respondError(c, h.log, op, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
