package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nnimab/Smart-vocabulary-book/internal/excel"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleError renders every handler error as JSON.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   errorResponse
		he     *echo.HTTPError
		ve     *excel.ValidationError
	)
	switch {
	case errors.As(err, &he):
		status = he.Code
		body.Error = fmt.Sprint(he.Message)
	default:
		status = statusFor(err)
		body.Error = err.Error()
	}
	if errors.As(err, &ve) {
		body.Problems = ve.Problems
	}
	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithField("uri", c.Request().RequestURI).Error("internal error")
		body.Error = http.StatusText(status)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.log.WithError(err).Warn("failed to write error response")
	}
}

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, models.ErrValidation)...)
}

// idParam reads a positive numeric path parameter.
func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}

// intQuery reads an optional integer query parameter.
func intQuery(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return v, nil
}
