package bookinstances

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/models"
)

type handler struct {
	bookInstanceService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBookInstancesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	instances, err := h.bookInstanceService.ListBookInstances(ctx, ListBookInstancesOptions{
		Status: params.Status,
		BookID: params.BookID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]*catalog.View, 0, len(instances))
	for _, bi := range instances {
		views = append(views, catalog.NewView(bi).With("book", catalog.NewView(bi.Book)))
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"bookinstances": views,
		"total":         len(instances),
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := catalog.ParseID(c, models.KindBookInstance)
	if err != nil {
		return err
	}

	bi, err := h.bookInstanceService.RetrieveDetail(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	view := catalog.NewView(bi).With("book", catalog.NewView(bi.Book))
	return errors.WithStack(c.JSON(http.StatusOK, view))
}

func (h *handler) updateForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := catalog.ParseID(c, models.KindBookInstance)
	if err != nil {
		return err
	}

	form, err := h.bookInstanceService.RetrieveForm(ctx, id, "")
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, map[string]any{
		"record":  catalog.NewView(form.Instance),
		"options": form.options(),
	}))
}
