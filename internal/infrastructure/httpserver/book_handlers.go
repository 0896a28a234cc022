package httpserver

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/booknest/catalog-service/internal/core/domain/audit"
	"github.com/booknest/catalog-service/internal/core/domain/book"
	"github.com/booknest/catalog-service/internal/infrastructure/httpserver/helpers"
)

// toHTTPError maps catalog errors to responses; anything unknown is a 500.
func (s *Server) toHTTPError(c echo.Context, err error, msg string) error {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he
	case errors.Is(err, book.ErrInvalidCriteria):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, book.ErrAuthorNotFound):
		return echo.NewHTTPError(http.StatusBadRequest, "author does not exist")
	case errors.Is(err, book.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "book not found")
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"path": c.Path(), "error": err.Error()}).Error(msg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}

// GET /api/v1/books
func (s *Server) listBooks(c echo.Context) error {
	criteria, page, err := book.ParseListQuery(c.QueryParams())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := s.catalog.ListBooks(c.Request().Context(), criteria, page)
	if err != nil {
		return s.toHTTPError(c, err, "failed to list books")
	}
	return c.JSON(http.StatusOK, items)
}

// GET /api/v1/books/:id?joinMode=with
func (s *Server) getBook(c echo.Context) error {
	id, err := helpers.GetIDParam(c, "id")
	if err != nil {
		return err
	}
	joinMode := book.JoinWithout
	switch book.JoinMode(c.QueryParam("joinMode")) {
	case "", book.JoinWithout:
	case book.JoinWith:
		joinMode = book.JoinWith
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown join mode")
	}
	summary, err := s.catalog.GetBook(c.Request().Context(), id, joinMode)
	if err != nil {
		return s.toHTTPError(c, err, "failed to get book")
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) createBook(c echo.Context) error {
	var req book.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := s.catalog.CreateBook(c.Request().Context(), &req)
	if err != nil {
		return s.toHTTPError(c, err, "failed to create book")
	}
	s.recordAudit(c, audit.ActionCreate, audit.ResourceBook, strconv.Itoa(b.ID), req)
	return c.JSON(http.StatusCreated, b)
}

func (s *Server) updateBook(c echo.Context) error {
	id, err := helpers.GetIDParam(c, "id")
	if err != nil {
		return err
	}
	var req book.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Name == nil && req.Genres == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}
	b, err := s.catalog.UpdateBook(c.Request().Context(), id, &req)
	if err != nil {
		return s.toHTTPError(c, err, "failed to update book")
	}
	s.recordAudit(c, audit.ActionUpdate, audit.ResourceBook, strconv.Itoa(id), req)
	return c.JSON(http.StatusOK, b)
}

func (s *Server) deleteBook(c echo.Context) error {
	id, err := helpers.GetIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.catalog.DeleteBook(c.Request().Context(), id); err != nil {
		return s.toHTTPError(c, err, "failed to delete book")
	}
	s.recordAudit(c, audit.ActionDelete, audit.ResourceBook, strconv.Itoa(id), nil)
	return c.NoContent(http.StatusNoContent)
}

// GET /api/v1/books/:id/file streams the stored book as an attachment.
func (s *Server) getBookFile(c echo.Context) error {
	id, err := helpers.GetIDParam(c, "id")
	if err != nil {
		return err
	}
	f, err := s.catalog.OpenBookFile(c.Request().Context(), id)
	if err != nil {
		return s.toHTTPError(c, err, "failed to open book file")
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filepath.Base(f.Name())+`"`)
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, f)
}
