package genres

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/identity"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
)

// RegisterRoutesWithGroup registers genre routes on the catalog group.
func RegisterRoutesWithGroup(g *echo.Group, s store.Store, p *pipeline.Pipeline, opts fanout.Options) {
	genreService := NewService(s, p, opts)

	h := &handler{genreService: genreService}

	catalog.NewHandlers(genreService.Resource, identity.PathPrefix+"/genres", nil).Register(g)
	g.GET("/genres", h.list)
	g.GET("/genre/:id", h.retrieve)
	g.GET("/genre/:id/update", h.updateForm)
}
