package exceptions

import "net/http"

var ErrInvalidPayload = &Exception{
	Message:    "invalid request payload",
	StatusCode: http.StatusBadRequest,
}

var ErrTitleRequired = &Exception{
	Message:    "title is required",
	StatusCode: http.StatusBadRequest,
}

var ErrUserIDRequired = &Exception{
	Message:    "userId is required",
	StatusCode: http.StatusBadRequest,
}

var ErrAllFieldsRequired = &Exception{
	Message:    "all fields must be filled",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidStatus = &Exception{
	Message:    "status must be one of ToDo, Doing, Done",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidPriority = &Exception{
	Message:    "priority must be one of Low, Medium, High",
	StatusCode: http.StatusBadRequest,
}

var ErrFileTooLarge = &Exception{
	Message:    "file exceeds the upload size limit",
	StatusCode: http.StatusRequestEntityTooLarge,
}
