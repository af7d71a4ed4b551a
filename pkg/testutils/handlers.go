package testutils

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/locallibrary/pkg/sampledata"
	"github.com/shishobooks/locallibrary/pkg/store"
)

type handler struct {
	store store.Store
}

// populate loads the sample catalog.
// POST /test/catalog.
func (h *handler) populate(c echo.Context) error {
	ctx := c.Request().Context()

	sum, err := sampledata.Populate(ctx, h.store)
	if err != nil {
		return errors.Wrap(err, "failed to populate catalog")
	}

	logger.FromContext(ctx).Info("populated sample catalog", logger.Data{"books": sum.Books})
	return c.JSON(http.StatusCreated, sum)
}

// reset deletes every record in the catalog.
// DELETE /test/catalog.
func (h *handler) reset(c echo.Context) error {
	ctx := c.Request().Context()

	sum, err := sampledata.Reset(ctx, h.store)
	if err != nil {
		return errors.Wrap(err, "failed to reset catalog")
	}

	return c.JSON(http.StatusOK, sum)
}
