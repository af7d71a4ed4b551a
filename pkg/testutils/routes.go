// Package testutils provides test-only API endpoints.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/pkg/store"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, s store.Store) {
	h := &handler{store: s}

	test := e.Group("/test")
	test.POST("/catalog", h.populate)
	test.DELETE("/catalog", h.reset)
}
