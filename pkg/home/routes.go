package home

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/store"
)

// RegisterRoutesWithGroup serves the summary at the catalog root.
func RegisterRoutesWithGroup(g *echo.Group, s store.Store, opts fanout.Options) {
	h := &handler{homeService: NewService(s, opts)}

	g.GET("", h.index)
	g.GET("/", h.index)
}
