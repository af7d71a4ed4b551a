package authors

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/identity"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
)

// RegisterRoutesWithGroup registers author routes on the catalog group.
func RegisterRoutesWithGroup(g *echo.Group, s store.Store, p *pipeline.Pipeline, opts fanout.Options) {
	authorService := NewService(s, p, opts)

	h := &handler{authorService: authorService}

	catalog.NewHandlers(authorService.Resource, identity.PathPrefix+"/authors", nil).Register(g)
	g.GET("/authors", h.list)
	g.GET("/author/:id", h.retrieve)
	g.GET("/author/:id/update", h.updateForm)
}
