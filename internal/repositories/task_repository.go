package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	model "tacly.com/taskboard/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// newID returns a time-ordered id so rows created in the same instant keep
// their insertion order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func orderedAttachments(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc, id asc")
}

// Create inserts the task together with any attachments set on it.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	now := time.Now().UTC()
	task.ID = newID()
	task.CreatedAt = now
	for i := range task.Attachments {
		task.Attachments[i].ID = newID()
		task.Attachments[i].TaskID = task.ID
		task.Attachments[i].CreatedAt = now
	}

	return translate(r.db.WithContext(ctx).Create(task).Error)
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Attachments", orderedAttachments).
		First(&task, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	err := r.db.WithContext(ctx).
		Preload("Attachments", orderedAttachments).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&tasks).Error
	return tasks, translate(err)
}

// Update replaces the scalar fields of task and appends attachments.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task, attachments []model.Attachment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Task{}).
			Where("id = ?", task.ID).
			Updates(map[string]interface{}{
				"title":       task.Title,
				"description": task.Description,
				"status":      task.Status,
				"priority":    task.Priority,
				"user_id":     task.UserID,
			})
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if len(attachments) == 0 {
			return nil
		}

		now := time.Now().UTC()
		for i := range attachments {
			attachments[i].ID = newID()
			attachments[i].TaskID = task.ID
			attachments[i].CreatedAt = now
		}
		return translate(tx.Create(&attachments).Error)
	})
}

// Delete removes the task and its attachment rows, returning the removed
// attachments so their stored files can be cleaned up.
func (r *TaskRepository) Delete(ctx context.Context, id string) ([]model.Attachment, error) {
	var removed []model.Attachment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Find(&removed).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return removed, nil
}
