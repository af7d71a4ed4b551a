package books

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/models"
)

type handler struct {
	bookService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.bookService.ListBooks(ctx, ListBooksOptions{
		AuthorID: params.AuthorID,
		GenreID:  params.GenreID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]*catalog.View, 0, len(books))
	for _, b := range books {
		views = append(views, catalog.NewView(b).With("author", catalog.NewView(b.Author)))
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"books": views,
		"total": len(books),
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := catalog.ParseID(c, models.KindBook)
	if err != nil {
		return err
	}

	detail, err := h.bookService.RetrieveDetail(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	view := catalog.NewView(detail.Book).
		With("author", catalog.NewView(detail.Book.Author)).
		With("genres", catalog.Views(detail.Book.Genres)).
		With("instances", catalog.Views(detail.Instances))
	return errors.WithStack(c.JSON(http.StatusOK, view))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := catalog.ParseID(c, models.KindBook)
	if err != nil {
		return err
	}

	form, err := h.bookService.RetrieveForm(ctx, id, nil)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"record":  catalog.NewView(form.Book),
		"options": form.options(),
	}))
}
