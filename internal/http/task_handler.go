package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	dto "tacly.com/taskboard/internal/data_models"
	"tacly.com/taskboard/internal/exceptions"
	middleware "tacly.com/taskboard/internal/http/middlewares"
	"tacly.com/taskboard/internal/services"
)

// filesField is the multipart field carrying attachments.
const filesField = "files"

type TaskHandler struct {
	logger         zerolog.Logger
	taskService    *services.TaskService
	maxUploadBytes int64
}

func NewTaskHandler(logger zerolog.Logger, taskService *services.TaskService, maxUploadBytes int64) *TaskHandler {
	return &TaskHandler{
		logger:         logger,
		taskService:    taskService,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *TaskHandler) ListTasks(c echo.Context) error {
	userID := c.Param("userId")
	if userID != middleware.UserID(c) {
		return exceptions.ErrForbidden
	}

	tasks, err := h.taskService.ListTasks(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return exceptions.ErrInvalidPayload
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.UserID != middleware.UserID(c) {
		return exceptions.ErrForbidden
	}

	files, closeFiles, err := h.uploads(c)
	if err != nil {
		return err
	}
	defer closeFiles()

	task, err := h.taskService.CreateTask(c.Request().Context(), services.CreateTaskParams{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Files:       files,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id := c.Param("id")
	if err := h.authorizeTask(c, id); err != nil {
		return err
	}

	var req dto.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return exceptions.ErrInvalidPayload
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	// The owner cannot be changed; a blank userId is reported by the service.
	if req.UserID != "" && req.UserID != middleware.UserID(c) {
		return exceptions.ErrForbidden
	}

	files, closeFiles, err := h.uploads(c)
	if err != nil {
		return err
	}
	defer closeFiles()

	task, err := h.taskService.UpdateTask(c.Request().Context(), services.UpdateTaskParams{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		UserID:      req.UserID,
		Files:       files,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id := c.Param("id")
	if err := h.authorizeTask(c, id); err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "task deleted"})
}

func (h *TaskHandler) GetSharedTask(c echo.Context) error {
	task, err := h.taskService.GetSharedTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteAttachment(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	owner, err := h.taskService.AttachmentOwner(ctx, id)
	if err != nil {
		return err
	}
	if owner != middleware.UserID(c) {
		return exceptions.ErrForbidden
	}

	if err := h.taskService.DeleteAttachment(ctx, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "attachment deleted"})
}

func (h *TaskHandler) authorizeTask(c echo.Context, id string) error {
	task, err := h.taskService.GetTask(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if task.UserID != middleware.UserID(c) {
		return exceptions.ErrForbidden
	}
	return nil
}

// uploads opens every file of a multipart request. The returned func closes
// them and must be called once the service is done reading.
func (h *TaskHandler) uploads(c echo.Context) ([]services.Upload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, noop, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, exceptions.ErrInvalidPayload
	}

	headers := form.File[filesField]
	for _, fh := range headers {
		if fh.Size > h.maxUploadBytes {
			h.logger.Debug().
				Str("file_name", fh.Filename).
				Int64("size", fh.Size).
				Msg("rejected oversized upload")
			return nil, noop, exceptions.ErrFileTooLarge
		}
	}

	files := make([]services.Upload, 0, len(headers))
	opened := make([]io.Closer, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, errors.Join(exceptions.ErrInvalidPayload, err)
		}
		opened = append(opened, f)
		files = append(files, services.Upload{
			Filename:    fh.Filename,
			ContentType: contentType(fh),
			Content:     f,
		})
	}
	return files, closeAll, nil
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get(echo.HeaderContentType); ct != "" {
		return ct
	}
	return echo.MIMEOctetStream
}
