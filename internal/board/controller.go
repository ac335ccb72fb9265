package board

import (
	"context"
	"fmt"

	"tacly.com/taskboard/internal/constants"
	model "tacly.com/taskboard/internal/models"
)

// Backend is the server side of the board.
type Backend interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) error
}

// Controller runs board transitions and applies their effects. It is not
// safe for concurrent use.
type Controller struct {
	backend Backend
	board   Board
}

func NewController(backend Backend) *Controller {
	return &Controller{backend: backend}
}

func (c *Controller) Board() Board {
	return c.board
}

// Refresh replaces the board with the server's task list. The drag state
// does not survive a refresh.
func (c *Controller) Refresh(ctx context.Context) error {
	tasks, err := c.backend.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	c.board = New(tasks)
	return nil
}

func (c *Controller) DragStart(taskID string) {
	c.board = c.board.DragStart(taskID)
}

func (c *Controller) DropOnColumn(ctx context.Context, status constants.TaskStatus) error {
	var change *StatusChange
	c.board, change = c.board.DropOnColumn(status)
	return c.apply(ctx, change)
}

func (c *Controller) DropOnTask(ctx context.Context, targetID string) error {
	var change *StatusChange
	c.board, change = c.board.DropOnTask(targetID)
	return c.apply(ctx, change)
}

// Move drags taskID onto the status column in one step.
func (c *Controller) Move(ctx context.Context, taskID string, status constants.TaskStatus) error {
	c.DragStart(taskID)
	return c.DropOnColumn(ctx, status)
}

// Reorder drags taskID onto targetID in one step.
func (c *Controller) Reorder(ctx context.Context, taskID, targetID string) error {
	c.DragStart(taskID)
	return c.DropOnTask(ctx, targetID)
}

func (c *Controller) apply(ctx context.Context, change *StatusChange) error {
	if change == nil {
		return nil
	}
	if err := c.backend.UpdateTask(ctx, change.Task); err != nil {
		return fmt.Errorf("update task %s: %w", change.Task.ID, err)
	}
	return c.Refresh(ctx)
}
