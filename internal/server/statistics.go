package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) overallStats(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	stats, err := s.svc.Stats.Overall(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// activity serves the heatmap; timeframe is month, quarter or year (default).
func (s *Server) activity(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	heatmap, err := s.svc.Stats.Activity(c.Request().Context(), userID, c.QueryParam("timeframe"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, heatmap)
}

func (s *Server) progress(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	months, err := s.svc.Stats.Monthly(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, months)
}

func (s *Server) memoryCurve(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	curve, err := s.svc.Stats.MemoryCurve(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, curve)
}
