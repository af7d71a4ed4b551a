package home

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	homeService *Service
}

func (h *handler) index(c echo.Context) error {
	counts, err := h.homeService.RetrieveCounts(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, counts))
}
