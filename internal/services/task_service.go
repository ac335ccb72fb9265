package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"tacly.com/taskboard/internal/constants"
	"tacly.com/taskboard/internal/exceptions"
	model "tacly.com/taskboard/internal/models"
	repository "tacly.com/taskboard/internal/repositories"
	"tacly.com/taskboard/internal/storage"
)

type TaskService struct {
	logger      zerolog.Logger
	repo        *repository.TaskRepository
	attachments *repository.AttachmentRepository
	storage     storage.Storage
}

// Upload is one file received with a create or update request.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

type CreateTaskParams struct {
	UserID      string
	Title       string
	Description string
	Status      string
	Priority    string
	Files       []Upload
}

type UpdateTaskParams struct {
	ID          string
	Title       string
	Description string
	Priority    string
	Status      string
	UserID      string
	Files       []Upload
}

func NewTaskService(
	logger zerolog.Logger,
	repo *repository.TaskRepository,
	attachments *repository.AttachmentRepository,
	store storage.Storage,
) *TaskService {
	return &TaskService{
		logger:      logger,
		repo:        repo,
		attachments: attachments,
		storage:     store,
	}
}

func (s *TaskService) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, exceptions.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return task, nil
}

// CreateTask stores the files first and then inserts the task with one
// attachment per file.
func (s *TaskService) CreateTask(ctx context.Context, p CreateTaskParams) (*model.Task, error) {
	if strings.TrimSpace(p.UserID) == "" {
		return nil, exceptions.ErrUserIDRequired
	}
	if strings.TrimSpace(p.Title) == "" {
		return nil, exceptions.ErrTitleRequired
	}

	status := constants.StatusToDo
	if p.Status != "" {
		status = constants.TaskStatus(p.Status)
	}
	priority := constants.PriorityMedium
	if p.Priority != "" {
		priority = constants.TaskPriority(p.Priority)
	}
	if err := validateEnums(status, priority); err != nil {
		return nil, err
	}

	attachments, err := s.store(ctx, p.Files)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Status:      status,
		Priority:    priority,
		Attachments: attachments,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		s.discard(ctx, attachments)
		return nil, fmt.Errorf("insert task: %w", err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Int("attachments", len(task.Attachments)).
		Msg("created task")
	return task, nil
}

// UpdateTask replaces every scalar field and appends any new files.
func (s *TaskService) UpdateTask(ctx context.Context, p UpdateTaskParams) (*model.Task, error) {
	for _, v := range []string{p.Title, p.Description, p.Priority, p.Status, p.UserID} {
		if strings.TrimSpace(v) == "" {
			return nil, exceptions.ErrAllFieldsRequired
		}
	}

	status := constants.TaskStatus(p.Status)
	priority := constants.TaskPriority(p.Priority)
	if err := validateEnums(status, priority); err != nil {
		return nil, err
	}

	if _, err := s.GetTask(ctx, p.ID); err != nil {
		return nil, err
	}

	attachments, err := s.store(ctx, p.Files)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Description: p.Description,
		Status:      status,
		Priority:    priority,
	}
	if err := s.repo.Update(ctx, task, attachments); err != nil {
		s.discard(ctx, attachments)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, exceptions.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("status", string(task.Status)).
		Int("new_attachments", len(attachments)).
		Msg("updated task")
	return s.GetTask(ctx, p.ID)
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return exceptions.ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}

	s.discard(ctx, removed)
	s.logger.Info().
		Str("task_id", id).
		Int("attachments", len(removed)).
		Msg("deleted task")
	return nil
}

func (s *TaskService) GetSharedTask(ctx context.Context, id string) (*model.SharedTask, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	shared := task.Shared()
	return &shared, nil
}

// DeleteAttachment removes the stored file best-effort, then the record.
func (s *TaskService) DeleteAttachment(ctx context.Context, id string) error {
	attachment, err := s.attachments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return exceptions.ErrAttachmentNotFound
		}
		return fmt.Errorf("find attachment: %w", err)
	}

	s.discard(ctx, []model.Attachment{*attachment})

	if err := s.attachments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return exceptions.ErrAttachmentNotFound
		}
		return fmt.Errorf("delete attachment: %w", err)
	}

	s.logger.Info().
		Str("attachment_id", id).
		Str("task_id", attachment.TaskID).
		Msg("deleted attachment")
	return nil
}

// AttachmentOwner returns the id of the user owning the attachment's task.
func (s *TaskService) AttachmentOwner(ctx context.Context, id string) (string, error) {
	owner, err := s.attachments.OwnerID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", exceptions.ErrAttachmentNotFound
		}
		return "", fmt.Errorf("find attachment owner: %w", err)
	}
	return owner, nil
}

func (s *TaskService) store(ctx context.Context, files []Upload) ([]model.Attachment, error) {
	attachments := make([]model.Attachment, 0, len(files))
	for _, f := range files {
		url, err := s.storage.Put(ctx, f.Filename, f.ContentType, f.Content)
		if err != nil {
			s.discard(ctx, attachments)
			return nil, fmt.Errorf("store attachment %q: %w", f.Filename, err)
		}
		attachments = append(attachments, model.Attachment{
			FilePath: url,
			FileName: f.Filename,
		})
	}
	return attachments, nil
}

// discard deletes stored files. Failures are logged and otherwise ignored.
func (s *TaskService) discard(ctx context.Context, attachments []model.Attachment) {
	for _, a := range attachments {
		if err := s.storage.Delete(ctx, a.FilePath); err != nil {
			s.logger.Warn().
				Err(err).
				Str("file_path", a.FilePath).
				Msg("failed to delete attachment file")
		}
	}
}

func validateEnums(status constants.TaskStatus, priority constants.TaskPriority) error {
	if !status.Valid() {
		return exceptions.ErrInvalidStatus
	}
	if !priority.Valid() {
		return exceptions.ErrInvalidPriority
	}
	return nil
}
