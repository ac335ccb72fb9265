package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	dto "tacly.com/taskboard/internal/data_models"
	"tacly.com/taskboard/internal/exceptions"
)

const internalErrorMessage = "internal server error"

// ErrorHandler writes every error as {"error": message}. Internal errors are
// logged and answered with a generic message.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := resolve(err)
		if status >= http.StatusInternalServerError {
			logger.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
			message = internalErrorMessage
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, dto.ErrorResponse{Error: message})
		}
		if err != nil {
			logger.Error().Err(err).Msg("failed to write error response")
		}
	}
}

func resolve(err error) (int, string) {
	var appErr *exceptions.Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode, appErr.Message
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	}

	return http.StatusInternalServerError, internalErrorMessage
}
