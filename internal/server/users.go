package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) createUser(c echo.Context) error {
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user, err := s.svc.Users.CreateUser(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

func (s *Server) getUser(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	user, err := s.svc.Users.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) updateUser(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	var req userRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	user, err := s.svc.Users.UpdateUser(c.Request().Context(), userID, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
