package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shishobooks/locallibrary/pkg/authors"
	"github.com/shishobooks/locallibrary/pkg/binder"
	"github.com/shishobooks/locallibrary/pkg/bookinstances"
	"github.com/shishobooks/locallibrary/pkg/books"
	"github.com/shishobooks/locallibrary/pkg/config"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/genres"
	"github.com/shishobooks/locallibrary/pkg/home"
	"github.com/shishobooks/locallibrary/pkg/identity"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
	"github.com/shishobooks/locallibrary/pkg/testutils"
	"github.com/shishobooks/locallibrary/pkg/version"
)

func New(cfg *config.Config, s store.Store) (*http.Server, error) {
	e, err := newEcho(cfg, s)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, s store.Store) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	e.GET("/version", versionHandler)

	p := pipeline.New()
	opts := fanout.Options{OperationTimeout: cfg.FanoutOperationTimeout}

	catalogGroup := e.Group(identity.PathPrefix)
	home.RegisterRoutesWithGroup(catalogGroup, s, opts)
	authors.RegisterRoutesWithGroup(catalogGroup, s, p, opts)
	genres.RegisterRoutesWithGroup(catalogGroup, s, p, opts)
	books.RegisterRoutesWithGroup(catalogGroup, s, p, opts)
	bookinstances.RegisterRoutesWithGroup(catalogGroup, s, p, opts)

	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, identity.PathPrefix)
	})

	if cfg.IsTest() {
		testutils.RegisterRoutes(e, s)
	}

	e.RouteNotFound("/*", notFoundHandler)
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func versionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"version": version.Version})
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
