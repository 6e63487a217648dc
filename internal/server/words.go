package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/nnimab/Smart-vocabulary-book/internal/excel"
)

// maxImportSize bounds uploaded import files.
const maxImportSize = 10 << 20

func (s *Server) listWords(c echo.Context) error {
	bookID, err := idParam(c, "bookId")
	if err != nil {
		return err
	}
	book, err := s.svc.Books.GetBook(c.Request().Context(), bookID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book.Words)
}

func (s *Server) addWord(c echo.Context) error {
	bookID, err := idParam(c, "bookId")
	if err != nil {
		return err
	}
	var req wordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	word, err := s.svc.Books.AddWord(c.Request().Context(), bookID, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, word)
}

// importWords accepts a multipart "file" upload (xlsx, csv or text), a JSON
// list of words, or JSON pasted text.
func (s *Server) importWords(c echo.Context) error {
	bookID, err := idParam(c, "bookId")
	if err != nil {
		return err
	}

	rows, err := s.importRows(c)
	if err != nil {
		return err
	}
	result, err := s.svc.Books.ImportWords(c.Request().Context(), bookID, rows)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

func (s *Server) importRows(c echo.Context) ([]excel.Row, error) {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, badRequest("file is required")
		}
		if fh.Size > maxImportSize {
			return nil, badRequest("file is larger than %d bytes", maxImportSize)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()

		cfg := excel.DefaultImportConfig()
		cfg.SheetName = c.FormValue("sheet")
		return excel.Parse(f, excel.FormatFromPath(fh.Filename), cfg)
	}

	var req importRequest
	if err := c.Bind(&req); err != nil {
		return nil, err
	}
	if req.Text != "" {
		return excel.ParseText(req.Text)
	}
	// rows are validated by the service so a single bad entry rejects the batch
	return lo.Map(req.Words, func(w wordRequest, i int) excel.Row {
		return excel.Row{
			Line:          i + 1,
			Word:          w.Word,
			Definition:    w.Definition,
			Pronunciation: w.Pronunciation,
			Examples:      w.Examples,
		}
	}), nil
}

func (s *Server) updateFamiliarity(c echo.Context) error {
	wordID, err := idParam(c, "wordId")
	if err != nil {
		return err
	}
	var req familiarityRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}
	word, err := s.svc.Study.UpdateWordFamiliarity(c.Request().Context(), wordID, *req.IsKnown)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, word)
}

func (s *Server) deleteWord(c echo.Context) error {
	wordID, err := idParam(c, "wordId")
	if err != nil {
		return err
	}
	bookID, err := idParam(c, "bookId")
	if err != nil {
		return err
	}
	book, err := s.svc.Books.DeleteWord(c.Request().Context(), bookID, wordID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (s *Server) dueWords(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	words, err := s.svc.Study.DueWords(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, words)
}
