package books

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/identity"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
)

// RegisterRoutesWithGroup registers book routes on the catalog group.
func RegisterRoutesWithGroup(g *echo.Group, s store.Store, p *pipeline.Pipeline, opts fanout.Options) {
	bookService := NewService(s, p, opts)

	h := &handler{bookService: bookService}

	catalog.NewHandlers(bookService.Resource, identity.PathPrefix+"/books", bookService.FormOptions).Register(g)
	g.GET("/books", h.list)
	g.GET("/book/:id", h.retrieve)
	g.GET("/book/:id/update", h.updateForm)
}
