package handlers

import (
	"errors"

	"taskpro/internal/models"
	"taskpro/internal/repository"
	ws "taskpro/internal/websocket"
	"taskpro/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TaskStore is the owner-scoped data access the handlers delegate to.
type TaskStore interface {
	List(ownerID, statusFilter string) ([]models.Task, error)
	Create(ownerID, title string, description *string, status string) (models.Task, error)
	Update(ownerID string, taskID int, patch repository.TaskPatch) (models.Task, error)
	Delete(ownerID string, taskID int) error
}

type TaskHandler struct {
	Store    TaskStore
	Validate *validator.Validate
	Events   *ws.Hub
}

func NewTaskHandler(store TaskStore, validate *validator.Validate, events *ws.Hub) *TaskHandler {
	return &TaskHandler{Store: store, Validate: validate, Events: events}
}

// ListTasks returns the caller's tasks, newest first, optionally filtered
// by ?status=. An unknown status value is ignored rather than rejected.
func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	tasks, err := h.Store.List(userID, c.Query("status"))
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching tasks",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Tasks fetched", zap.String("user_id", userID), zap.Int("count", len(tasks)))
	return c.JSON(tasks)
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	type TaskRequest struct {
		Title       string  `json:"title" validate:"required"`
		Description *string `json:"description"`
		Status      string  `json:"status"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.ErrorLogger.Error("Validation error in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Title is required",
			"success": false,
			"status":  400,
		})
	}

	task, err := h.Store.Create(userID, req.Title, req.Description, req.Status)
	if err != nil {
		var vErr *repository.ValidationError
		if errors.As(err, &vErr) {
			logger.ErrorLogger.Error("Invalid title in create task", zap.Error(err))
			return c.Status(400).JSON(fiber.Map{
				"message": "Title is required",
				"success": false,
				"status":  400,
			})
		}
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error creating task",
			"success": false,
			"status":  500,
		})
	}

	h.Events.Notify(userID, "created", task.ID)
	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID), zap.String("user_id", userID))
	return c.Status(201).JSON(task)
}

// UpdateTask applies a partial patch. The row predicate always includes
// the caller's id, so a guessed task id belonging to someone else answers
// the same 404 as a missing one.
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid task ID",
			"success": false,
			"status":  400,
		})
	}

	var patch repository.TaskPatch
	if err := c.BodyParser(&patch); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	task, err := h.Store.Update(userID, taskID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			logger.AuditLogger.Warn("Task not found in update", zap.Int("task_id", taskID), zap.String("user_id", userID))
			return c.Status(404).JSON(fiber.Map{
				"message": "Task not found",
				"success": false,
				"status":  404,
			})
		}
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error updating task",
			"success": false,
			"status":  500,
		})
	}

	h.Events.Notify(userID, "updated", task.ID)
	logger.AuditLogger.Info("Task updated", zap.Int("task_id", task.ID), zap.String("user_id", userID))
	return c.JSON(task)
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid task ID",
			"success": false,
			"status":  400,
		})
	}

	if err := h.Store.Delete(userID, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			logger.AuditLogger.Warn("Task not found in delete", zap.Int("task_id", taskID), zap.String("user_id", userID))
			return c.Status(404).JSON(fiber.Map{
				"message": "Task not found",
				"success": false,
				"status":  404,
			})
		}
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error deleting task",
			"success": false,
			"status":  500,
		})
	}

	h.Events.Notify(userID, "deleted", taskID)
	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID), zap.String("user_id", userID))
	return c.SendStatus(204)
}
