package exceptions

import "net/http"

var ErrUserExists = &Exception{
	Message:    "user already exists",
	StatusCode: http.StatusBadRequest,
}

var ErrInvalidCredentials = &Exception{
	Message:    "invalid credentials",
	StatusCode: http.StatusUnauthorized,
}

var ErrIdentityToken = &Exception{
	Message:    "identity token verification failed",
	StatusCode: http.StatusUnauthorized,
}

var ErrUnauthorized = &Exception{
	Message:    "unauthorized",
	StatusCode: http.StatusUnauthorized,
}

var ErrForbidden = &Exception{
	Message:    "forbidden",
	StatusCode: http.StatusForbidden,
}

var ErrRateLimited = &Exception{
	Message:    "rate limit exceeded",
	StatusCode: http.StatusTooManyRequests,
}
