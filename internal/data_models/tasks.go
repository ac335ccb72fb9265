package dto

type CreateTaskRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"max=5000"`
	Status      string `json:"status" form:"status" validate:"omitempty,oneof=ToDo Doing Done"`
	Priority    string `json:"priority" form:"priority" validate:"omitempty,oneof=Low Medium High"`
	UserID      string `json:"userId" form:"userId" validate:"required"`
}

// UpdateTaskRequest leaves presence checks to the task service, which
// reports them together as one error.
type UpdateTaskRequest struct {
	Title       string `json:"title" form:"title" validate:"max=200"`
	Description string `json:"description" form:"description" validate:"max=5000"`
	Status      string `json:"status" form:"status"`
	Priority    string `json:"priority" form:"priority"`
	UserID      string `json:"userId" form:"userId"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
