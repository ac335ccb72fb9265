// Package board holds the client-side state of a user's three-column task
// board. Transitions are pure: each returns a new Board and, when the
// server must be told about a status change, a StatusChange effect.
package board

import (
	"tacly.com/taskboard/internal/constants"
	model "tacly.com/taskboard/internal/models"
)

type Board struct {
	tasks   []model.Task
	dragged string
}

// StatusChange asks for Task to be saved with its new status. All other
// fields are the ones last fetched from the server.
type StatusChange struct {
	Task model.Task
}

func New(tasks []model.Task) Board {
	return Board{tasks: clone(tasks)}
}

func (b Board) Tasks() []model.Task {
	return clone(b.tasks)
}

// Dragged returns the id of the task being dragged, or "".
func (b Board) Dragged() string {
	return b.dragged
}

func (b Board) Find(id string) (model.Task, bool) {
	for _, t := range b.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// Column returns the tasks with the given status in board order.
func (b Board) Column(status constants.TaskStatus) []model.Task {
	column := make([]model.Task, 0)
	for _, t := range b.tasks {
		if t.Status == status {
			column = append(column, t)
		}
	}
	return column
}

func (b Board) DragStart(taskID string) Board {
	b.dragged = taskID
	return b
}

// DropOnColumn emits a StatusChange when the dragged task is not already in
// the target column. The drag state is always cleared.
func (b Board) DropOnColumn(status constants.TaskStatus) (Board, *StatusChange) {
	dragged, ok := b.Find(b.dragged)
	b.dragged = ""
	if !ok || dragged.Status == status {
		return b, nil
	}

	dragged.Status = status
	return b, &StatusChange{Task: dragged}
}

// DropOnTask reorders within a column when both tasks share a status and
// otherwise moves the dragged task to the target's column. The reorder is
// local only.
func (b Board) DropOnTask(targetID string) (Board, *StatusChange) {
	if b.dragged == "" || b.dragged == targetID {
		b.dragged = ""
		return b, nil
	}

	dragged, ok := b.Find(b.dragged)
	target, found := b.Find(targetID)
	if !ok || !found {
		b.dragged = ""
		return b, nil
	}

	if dragged.Status != target.Status {
		return b.DropOnColumn(target.Status)
	}

	b.tasks = reorder(b.tasks, target.Status, dragged.ID, target.ID)
	b.dragged = ""
	return b, nil
}

// reorder moves fromID to toID's index within the status subsequence and
// places that subsequence after the tasks of every other status.
func reorder(tasks []model.Task, status constants.TaskStatus, fromID, toID string) []model.Task {
	others := make([]model.Task, 0, len(tasks))
	column := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			column = append(column, t)
		} else {
			others = append(others, t)
		}
	}

	from, to := indexOf(column, fromID), indexOf(column, toID)
	item := column[from]
	column = append(column[:from], column[from+1:]...)
	column = append(column[:to], append([]model.Task{item}, column[to:]...)...)

	return append(others, column...)
}

func indexOf(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clone(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	return out
}
