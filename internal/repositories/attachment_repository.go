package repository

import (
	"context"

	"gorm.io/gorm"

	model "tacly.com/taskboard/internal/models"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	var attachment model.Attachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &attachment, nil
}

// OwnerID returns the id of the user owning the task the attachment belongs to.
func (r *AttachmentRepository) OwnerID(ctx context.Context, id string) (string, error) {
	var owner struct {
		UserID string
	}
	res := r.db.WithContext(ctx).
		Table("attachments").
		Select("tasks.user_id AS user_id").
		Joins("JOIN tasks ON tasks.id = attachments.task_id").
		Where("attachments.id = ?", id).
		Limit(1).
		Scan(&owner)
	if res.Error != nil {
		return "", translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return "", ErrNotFound
	}
	return owner.UserID, nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Attachment{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
