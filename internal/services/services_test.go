package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	config "tacly.com/taskboard/internal/configs"
	model "tacly.com/taskboard/internal/models"
	repository "tacly.com/taskboard/internal/repositories"
)

// memoryStorage is an in-memory storage.Storage for tests.
type memoryStorage struct {
	mu         sync.Mutex
	objects    map[string]string
	failPut    bool
	failDelete bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string]string)}
}

func (m *memoryStorage) Put(_ context.Context, filename, _ string, content io.Reader) (string, error) {
	if m.failPut {
		return "", errors.New("disk full")
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	url := fmt.Sprintf("/uploads/%s-%s", uuid.NewString(), filename)
	m.objects[url] = string(data)
	return url, nil
}

func (m *memoryStorage) Delete(_ context.Context, url string) error {
	if m.failDelete {
		return errors.New("permission denied")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, url)
	return nil
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.NewDatabaseClient(config.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	user := &model.User{Name: "Test User", Email: email}
	if err := repository.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func newTestTaskService(db *gorm.DB, store *memoryStorage) *TaskService {
	return NewTaskService(
		zerolog.Nop(),
		repository.NewTaskRepository(db),
		repository.NewAttachmentRepository(db),
		store,
	)
}

func upload(name, content string) Upload {
	return Upload{
		Filename:    name,
		ContentType: "text/plain",
		Content:     strings.NewReader(content),
	}
}
