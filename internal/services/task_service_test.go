package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"tacly.com/taskboard/internal/constants"
	"tacly.com/taskboard/internal/exceptions"
	model "tacly.com/taskboard/internal/models"
)

func TestTaskService_CreateAppliesDefaults(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	service := newTestTaskService(db, newMemoryStorage())

	task, err := service.CreateTask(context.Background(), CreateTaskParams{
		UserID: user.ID,
		Title:  "T1",
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if task.ID == "" {
		t.Error("expected task ID to be set")
	}
	if task.Status != constants.StatusToDo {
		t.Errorf("expected status %s, got %s", constants.StatusToDo, task.Status)
	}
	if task.Priority != constants.PriorityMedium {
		t.Errorf("expected priority %s, got %s", constants.PriorityMedium, task.Priority)
	}
	if task.Description != "" {
		t.Errorf("expected empty description, got %q", task.Description)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected createdAt to be set")
	}
}

func TestTaskService_CreateValidation(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	service := newTestTaskService(db, newMemoryStorage())
	ctx := context.Background()

	cases := []struct {
		name   string
		params CreateTaskParams
		want   error
	}{
		{"missing title", CreateTaskParams{UserID: user.ID}, exceptions.ErrTitleRequired},
		{"blank title", CreateTaskParams{UserID: user.ID, Title: "  "}, exceptions.ErrTitleRequired},
		{"missing user", CreateTaskParams{Title: "T"}, exceptions.ErrUserIDRequired},
		{"bad status", CreateTaskParams{UserID: user.ID, Title: "T", Status: "Blocked"}, exceptions.ErrInvalidStatus},
		{"bad priority", CreateTaskParams{UserID: user.ID, Title: "T", Priority: "Urgent"}, exceptions.ErrInvalidPriority},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.CreateTask(ctx, tc.params); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	tasks, _ := service.ListTasks(ctx, user.ID)
	if len(tasks) != 0 {
		t.Errorf("expected no tasks after failed creates, got %d", len(tasks))
	}
}

func TestTaskService_CreateWithAttachments(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	store := newMemoryStorage()
	service := newTestTaskService(db, store)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskParams{
		UserID:   user.ID,
		Title:    "With files",
		Status:   "Doing",
		Priority: "High",
		Files:    []Upload{upload("a.txt", "A"), upload("b.txt", "B")},
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if len(task.Attachments) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(task.Attachments))
	}
	for _, a := range task.Attachments {
		if a.TaskID != task.ID {
			t.Errorf("attachment %s points at task %s, want %s", a.ID, a.TaskID, task.ID)
		}
	}
	if store.count() != 2 {
		t.Errorf("expected 2 stored files, got %d", store.count())
	}

	fetched, err := service.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if len(fetched.Attachments) != 2 || fetched.Attachments[0].FileName != "a.txt" {
		t.Errorf("attachments were not persisted: %+v", fetched.Attachments)
	}
}

func TestTaskService_CreateStorageFailure(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	store := newMemoryStorage()
	store.failPut = true
	service := newTestTaskService(db, store)

	_, err := service.CreateTask(context.Background(), CreateTaskParams{
		UserID: user.ID,
		Title:  "T",
		Files:  []Upload{upload("a.txt", "A")},
	})
	if err == nil {
		t.Fatal("expected storage error")
	}
	if exceptions.StatusCode(err) != 500 {
		t.Errorf("storage failures must map to 500, got %d", exceptions.StatusCode(err))
	}

	tasks, _ := service.ListTasks(context.Background(), user.ID)
	if len(tasks) != 0 {
		t.Errorf("no task should be created when a file cannot be stored, got %d", len(tasks))
	}
}

func TestTaskService_ListOldestFirst(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	other := createUser(t, db, "u2@example.com")
	service := newTestTaskService(db, newMemoryStorage())
	ctx := context.Background()

	empty, err := service.ListTasks(ctx, user.ID)
	if err != nil {
		t.Fatalf("listing an empty board must not fail: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", empty)
	}

	for _, title := range []string{"first", "second", "third"} {
		if _, err := service.CreateTask(ctx, CreateTaskParams{UserID: user.ID, Title: title}); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
	}
	if _, err := service.CreateTask(ctx, CreateTaskParams{UserID: other.ID, Title: "foreign"}); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	tasks, err := service.ListTasks(ctx, user.ID)
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i, title := range []string{"first", "second", "third"} {
		if tasks[i].Title != title {
			t.Errorf("position %d: expected %s, got %s", i, title, tasks[i].Title)
		}
	}
}

func TestTaskService_UpdateRequiresAllFields(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	service := newTestTaskService(db, newMemoryStorage())
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskParams{UserID: user.ID, Title: "T1", Description: "d"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	full := UpdateTaskParams{
		ID:          task.ID,
		Title:       "T2",
		Description: "d2",
		Priority:    "High",
		Status:      "Done",
		UserID:      user.ID,
	}
	blanks := []func(p *UpdateTaskParams){
		func(p *UpdateTaskParams) { p.Title = "" },
		func(p *UpdateTaskParams) { p.Description = "" },
		func(p *UpdateTaskParams) { p.Priority = "" },
		func(p *UpdateTaskParams) { p.Status = "" },
		func(p *UpdateTaskParams) { p.UserID = "" },
	}
	for i, blank := range blanks {
		p := full
		blank(&p)
		if _, err := service.UpdateTask(ctx, p); !errors.Is(err, exceptions.ErrAllFieldsRequired) {
			t.Errorf("case %d: expected ErrAllFieldsRequired, got %v", i, err)
		}
	}

	badStatus, badPriority := full, full
	badStatus.Status = "Blocked"
	badPriority.Priority = "Urgent"
	if _, err := service.UpdateTask(ctx, badStatus); !errors.Is(err, exceptions.ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := service.UpdateTask(ctx, badPriority); !errors.Is(err, exceptions.ErrInvalidPriority) {
		t.Errorf("expected ErrInvalidPriority, got %v", err)
	}

	fetched, _ := service.GetTask(ctx, task.ID)
	if fetched.Title != "T1" || fetched.Status != constants.StatusToDo {
		t.Errorf("rejected updates must not mutate the task, got %+v", fetched)
	}
}

func TestTaskService_UpdateReplacesAndAppends(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	service := newTestTaskService(db, newMemoryStorage())
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskParams{
		UserID: user.ID,
		Title:  "T1",
		Files:  []Upload{upload("old.txt", "old")},
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	before, err := service.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}

	updated, err := service.UpdateTask(ctx, UpdateTaskParams{
		ID:          task.ID,
		Title:       "T1 edited",
		Description: "now described",
		Priority:    "Low",
		Status:      "Doing",
		UserID:      user.ID,
		Files:       []Upload{upload("new.txt", "new")},
	})
	if err != nil {
		t.Fatalf("failed to update task: %v", err)
	}

	if updated.Title != "T1 edited" || updated.Description != "now described" ||
		updated.Priority != constants.PriorityLow || updated.Status != constants.StatusDoing {
		t.Errorf("scalar fields were not replaced: %+v", updated)
	}
	if len(updated.Attachments) != 2 {
		t.Errorf("expected existing and new attachment, got %d", len(updated.Attachments))
	}
	if !updated.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("createdAt must not change on update")
	}
}

func TestTaskService_UpdateUnknownTask(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	store := newMemoryStorage()
	service := newTestTaskService(db, store)

	_, err := service.UpdateTask(context.Background(), UpdateTaskParams{
		ID:          "missing",
		Title:       "T",
		Description: "d",
		Priority:    "Low",
		Status:      "Done",
		UserID:      user.ID,
		Files:       []Upload{upload("a.txt", "A")},
	})
	if !errors.Is(err, exceptions.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
	if store.count() != 0 {
		t.Errorf("no files should be stored for a missing task, got %d", store.count())
	}
}

func TestTaskService_DeleteCascadesAttachments(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	store := newMemoryStorage()
	service := newTestTaskService(db, store)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskParams{
		UserID: user.ID,
		Title:  "T1",
		Files:  []Upload{upload("a.txt", "A"), upload("b.txt", "B")},
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	if err := service.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("failed to delete task: %v", err)
	}

	var count int64
	if err := db.Model(&model.Attachment{}).Where("task_id = ?", task.ID).Count(&count).Error; err != nil {
		t.Fatalf("failed to count attachments: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no orphan attachments, got %d", count)
	}
	if store.count() != 0 {
		t.Errorf("expected stored files to be removed, got %d", store.count())
	}

	if _, err := service.GetTask(ctx, task.ID); !errors.Is(err, exceptions.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound after delete, got %v", err)
	}
	if err := service.DeleteTask(ctx, task.ID); !errors.Is(err, exceptions.ErrTaskNotFound) {
		t.Errorf("deleting twice should report ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_SharedViewHasNoOwner(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	service := newTestTaskService(db, newMemoryStorage())
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskParams{UserID: user.ID, Title: "Shared", Description: "public"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	shared, err := service.GetSharedTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("failed to get shared task: %v", err)
	}

	body, _ := json.Marshal(shared)
	if strings.Contains(string(body), "userId") || strings.Contains(string(body), user.ID) {
		t.Errorf("shared view leaks owner data: %s", body)
	}
	if !strings.Contains(string(body), `"attachments":[]`) {
		t.Errorf("shared view should always carry an attachments array: %s", body)
	}

	if _, err := service.GetSharedTask(ctx, "missing"); !errors.Is(err, exceptions.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskService_DeleteAttachment(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	store := newMemoryStorage()
	service := newTestTaskService(db, store)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskParams{
		UserID: user.ID,
		Title:  "T1",
		Files:  []Upload{upload("a.txt", "A"), upload("b.txt", "B")},
	})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	target := task.Attachments[0].ID
	owner, err := service.AttachmentOwner(ctx, target)
	if err != nil || owner != user.ID {
		t.Fatalf("expected owner %s, got %s (%v)", user.ID, owner, err)
	}

	// A failing file delete is logged, not fatal.
	store.failDelete = true
	if err := service.DeleteAttachment(ctx, target); err != nil {
		t.Fatalf("failed to delete attachment: %v", err)
	}

	fetched, _ := service.GetTask(ctx, task.ID)
	if len(fetched.Attachments) != 1 || fetched.Attachments[0].ID == target {
		t.Errorf("expected only the other attachment to remain, got %+v", fetched.Attachments)
	}

	if err := service.DeleteAttachment(ctx, target); !errors.Is(err, exceptions.ErrAttachmentNotFound) {
		t.Errorf("expected ErrAttachmentNotFound, got %v", err)
	}
	if _, err := service.AttachmentOwner(ctx, target); !errors.Is(err, exceptions.ErrAttachmentNotFound) {
		t.Errorf("expected ErrAttachmentNotFound, got %v", err)
	}
}

func TestTaskService_StatusTransitionsInAnyDirection(t *testing.T) {
	db := setupTestDB(t)
	user := createUser(t, db, "u1@example.com")
	service := newTestTaskService(db, newMemoryStorage())
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskParams{UserID: user.ID, Title: "T", Description: "d"})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	for _, status := range []string{"Done", "ToDo", "Doing", "ToDo", "Done", "Doing"} {
		updated, err := service.UpdateTask(ctx, UpdateTaskParams{
			ID:          task.ID,
			Title:       task.Title,
			Description: "d",
			Priority:    string(task.Priority),
			Status:      status,
			UserID:      user.ID,
		})
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
		if string(updated.Status) != status {
			t.Errorf("expected status %s, got %s", status, updated.Status)
		}
	}
}
