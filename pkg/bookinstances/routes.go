package bookinstances

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/identity"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
)

// RegisterRoutesWithGroup registers book copy routes on the catalog group.
func RegisterRoutesWithGroup(g *echo.Group, s store.Store, p *pipeline.Pipeline, opts fanout.Options) {
	bookInstanceService := NewService(s, p, opts)

	h := &handler{bookInstanceService: bookInstanceService}

	catalog.NewHandlers(bookInstanceService.Resource, identity.PathPrefix+"/bookinstances", bookInstanceService.FormOptions).Register(g)
	g.GET("/bookinstances", h.list)
	g.GET("/bookinstance/:id", h.retrieve)
	g.GET("/bookinstance/:id/update", h.updateForm)
}
