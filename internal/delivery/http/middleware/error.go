package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"tutorhub/internal/pkg/response"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

// ErrorMiddleware converts returned errors and recovered panics into the
// response envelope. 5xx detail never leaves the process; the cause goes to
// the log instead.
type ErrorMiddleware struct {
	logger *zap.Logger
}

func NewErrorMiddleware(logger *zap.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if m.logger != nil {
					m.logger.Error("panic recovered", zap.Any("panic", r), zap.String("path", c.OriginalURL()))
				}
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg, data := m.normalize(err)
		return response.Error(c, status, msg, data)
	}
}

func (m *ErrorMiddleware) normalize(err error) (int, string, interface{}) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status <= 0 {
			status = fiber.StatusInternalServerError
		}
		msg := appErr.Message
		if msg == "" {
			msg = response.DefaultMessageForStatus(status)
		}
		if status >= 500 {
			// The cause stays in the log; the handler-chosen message is all
			// the client sees.
			m.logInternal(appErr)
			return status, msg, nil
		}
		return status, msg, appErr.Data
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 || status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		msg := fiberErr.Message
		if msg == "" {
			msg = response.DefaultMessageForStatus(status)
		}
		return status, msg, nil
	}

	if m.logger != nil {
		m.logger.Error("unhandled error", zap.Error(err))
	}
	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}

func (m *ErrorMiddleware) logInternal(appErr *AppError) {
	if m.logger == nil {
		return
	}
	m.logger.Error("internal error", zap.String("message", appErr.Message), zap.Error(appErr.Cause))
}
