package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nnimab/Smart-vocabulary-book/internal/deck"
)

func (s *Server) listBooks(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	books, err := s.svc.Books.ListBooks(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

func (s *Server) currentBook(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	var currentID int64
	if raw := c.QueryParam("currentBookId"); raw != "" {
		if currentID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return badRequest("invalid currentBookId %q", raw)
		}
	}
	book, err := s.svc.Books.CurrentBook(c.Request().Context(), userID, currentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (s *Server) createBook(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.UserID <= 0 {
		return badRequest("userId is required")
	}
	book, err := s.svc.Books.CreateBook(c.Request().Context(), req.UserID, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, book)
}

func (s *Server) getBook(c echo.Context) error {
	bookID, err := idParam(c, "bookId")
	if err != nil {
		return err
	}
	book, err := s.svc.Books.GetBook(c.Request().Context(), bookID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (s *Server) updateBook(c echo.Context) error {
	bookID, err := idParam(c, "bookId")
	if err != nil {
		return err
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	book, err := s.svc.Books.UpdateBook(c.Request().Context(), bookID, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (s *Server) deleteBook(c echo.Context) error {
	bookID, err := idParam(c, "bookId")
	if err != nil {
		return err
	}
	var deleteWords bool
	if raw := c.QueryParam("deleteWords"); raw != "" {
		if deleteWords, err = strconv.ParseBool(raw); err != nil {
			return badRequest("invalid deleteWords %q", raw)
		}
	}
	if err := s.svc.Books.DeleteBook(c.Request().Context(), bookID, deleteWords); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deck(c echo.Context) error {
	bookID, err := idParam(c, "bookId")
	if err != nil {
		return err
	}
	mode, err := deck.ParseMode(c.QueryParam("mode"))
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		return err
	}
	cards, err := s.svc.Books.Deck(c.Request().Context(), bookID, mode, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cards)
}
