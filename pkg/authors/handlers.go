package authors

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/models"
)

type handler struct {
	authorService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	authors, err := h.authorService.ListAuthors(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"authors": catalog.Views(authors),
		"total":   len(authors),
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := catalog.ParseID(c, models.KindAuthor)
	if err != nil {
		return err
	}

	detail, err := h.authorService.RetrieveDetail(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	view := catalog.NewView(detail.Author).With("books", catalog.Views(detail.Books))
	return errors.WithStack(c.JSON(http.StatusOK, view))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := catalog.ParseID(c, models.KindAuthor)
	if err != nil {
		return err
	}

	author, err := h.authorService.Retrieve(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"record":  catalog.NewView(author),
		"options": map[string]any{},
	}))
}
