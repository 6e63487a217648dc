package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/nnimab/Smart-vocabulary-book/internal/service"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

func (s *Server) startSession(c echo.Context) error {
	var req startSessionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	sess, err := s.svc.Study.StartSession(c.Request().Context(), req.UserID, req.BookID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSession(*sess))
}

func (s *Server) reviewWord(c echo.Context) error {
	sessionID, err := idParam(c, "sessionId")
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	out, err := s.svc.Study.ReviewWord(c.Request().Context(), sessionID, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviewResponse{Word: out.Word, Result: toWordResult(out.Result), Book: out.Book})
}

func (s *Server) endSession(c echo.Context) error {
	sessionID, err := idParam(c, "sessionId")
	if err != nil {
		return err
	}
	summary, err := s.svc.Study.EndSession(c.Request().Context(), sessionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSummary(summary))
}

func (s *Server) listSessions(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit", service.DefaultSessionPageSize)
	if err != nil {
		return err
	}
	skip, err := intQuery(c, "skip", 0)
	if err != nil {
		return err
	}

	page, err := s.svc.Study.ListSessions(c.Request().Context(), userID, limit, skip)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionPageResponse{
		Sessions: lo.Map(page.Sessions, func(sess models.StudySession, _ int) sessionResponse { return toSession(sess) }),
		Total:    page.Total,
	})
}

func (s *Server) getSession(c echo.Context) error {
	sessionID, err := idParam(c, "sessionId")
	if err != nil {
		return err
	}
	sess, err := s.svc.Study.GetSession(c.Request().Context(), sessionID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSession(*sess))
}
