package model

import "time"

type Attachment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	TaskID    string    `gorm:"size:36;not null;index" json:"taskId"`
	FilePath  string    `gorm:"not null" json:"filePath"`
	FileName  string    `gorm:"not null;default:''" json:"fileName"`
	CreatedAt time.Time `json:"createdAt"`
}
