package model

import (
	"time"

	"tacly.com/taskboard/internal/constants"
)

type Task struct {
	ID          string                 `gorm:"primaryKey;size:36" json:"id"`
	UserID      string                 `gorm:"size:36;not null;index" json:"userId"`
	Title       string                 `gorm:"not null" json:"title"`
	Description string                 `gorm:"not null;default:''" json:"description"`
	Status      constants.TaskStatus   `gorm:"type:varchar(10);not null;default:'ToDo'" json:"status"`
	Priority    constants.TaskPriority `gorm:"type:varchar(10);not null;default:'Medium'" json:"priority"`
	CreatedAt   time.Time              `gorm:"index" json:"createdAt"`
	Attachments []Attachment           `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"attachments"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// SharedTask is the public projection of a task. It carries no owner data.
type SharedTask struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Status      constants.TaskStatus   `json:"status"`
	Priority    constants.TaskPriority `json:"priority"`
	CreatedAt   time.Time              `json:"createdAt"`
	Attachments []Attachment           `json:"attachments"`
}

func (t *Task) Shared() SharedTask {
	attachments := t.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}
	return SharedTask{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		Attachments: attachments,
	}
}
