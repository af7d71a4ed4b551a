package genres

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/models"
)

type handler struct {
	genreService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	genres, err := h.genreService.ListGenres(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"genres": catalog.Views(genres),
		"total":  len(genres),
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := catalog.ParseID(c, models.KindGenre)
	if err != nil {
		return err
	}

	detail, err := h.genreService.RetrieveDetail(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	view := catalog.NewView(detail.Genre).With("books", catalog.Views(detail.Books))
	return errors.WithStack(c.JSON(http.StatusOK, view))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := catalog.ParseID(c, models.KindGenre)
	if err != nil {
		return err
	}

	genre, err := h.genreService.Retrieve(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"record":  catalog.NewView(genre),
		"options": map[string]any{},
	}))
}
