package constants

type TaskStatus string

const (
	StatusToDo  TaskStatus = "ToDo"
	StatusDoing TaskStatus = "Doing"
	StatusDone  TaskStatus = "Done"
)

// Statuses lists the board columns in display order.
var Statuses = []TaskStatus{StatusToDo, StatusDoing, StatusDone}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusDoing, StatusDone:
		return true
	}
	return false
}

func (s TaskStatus) Label() string {
	switch s {
	case StatusToDo:
		return "To Do"
	case StatusDoing:
		return "Doing"
	case StatusDone:
		return "Done"
	}
	return string(s)
}
