package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, s store.Store) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	options := func(context.Context, pipeline.Input) (map[string]any, error) {
		return map[string]any{"colors": []string{"red"}}, nil
	}
	NewHandlers(newGenres(t, s), "/catalog/genres", options).Register(e.Group("/catalog"))
	return e
}

func serve(t *testing.T, e *echo.Echo, method, target, contentType, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	var payload map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload), rr.Body.String())
	}
	return rr, payload
}

func TestHandlers_CreateJSON(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, memstoreFor(t))

	rr, payload := serve(t, e, http.MethodPost, "/catalog/genre/create", echo.MIMEApplicationJSON, `{"name":"Fantasy"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "Fantasy", payload["name"])

	id := int(payload["id"].(float64))
	want := "/catalog/genre/" + strconv.Itoa(id)
	assert.Equal(t, want, rr.Header().Get(echo.HeaderLocation))
	assert.Equal(t, want, payload["derived"].(map[string]any)["url"])
}

func TestHandlers_CreateForm(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, memstoreFor(t))

	form := url.Values{"name": {"<b>Horror</b>"}}
	rr, payload := serve(t, e, http.MethodPost, "/catalog/genre/create", echo.MIMEApplicationForm, form.Encode())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "&lt;b&gt;Horror&lt;/b&gt;", payload["name"])
}

func TestHandlers_CreateForm_Options(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, memstoreFor(t))

	rr, payload := serve(t, e, http.MethodGet, "/catalog/genre/create", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"colors": []any{"red"}}, payload["options"])
}

func TestHandlers_CreateValidationFailure(t *testing.T) {
	t.Parallel()
	e := newTestServer(t, memstoreFor(t))

	rr, payload := serve(t, e, http.MethodPost, "/catalog/genre/create", echo.MIMEApplicationJSON, `{"name":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	assert.Equal(t, errcodes.CodeValidationFailed, payload["error"].(map[string]any)["code"])
	assert.Equal(t, []any{map[string]any{"field": "name", "message": "Genre name required"}}, payload["errors"])
	assert.Equal(t, map[string]any{"name": ""}, payload["input"])
	assert.Equal(t, map[string]any{"colors": []any{"red"}}, payload["options"])
}

func TestHandlers_Update(t *testing.T) {
	t.Parallel()
	s, seed := seeded(t)
	e := newTestServer(t, s)

	target := "/catalog/genre/" + strconv.Itoa(seed.Poetry) + "/update"
	rr, payload := serve(t, e, http.MethodPost, target, echo.MIMEApplicationJSON, `{"name":"Verse"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Verse", payload["name"])
	assert.EqualValues(t, seed.Poetry, payload["id"])

	rr, _ = serve(t, e, http.MethodPost, "/catalog/genre/abc/update", echo.MIMEApplicationJSON, `{"name":"Verse"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlers_DeletePreview(t *testing.T) {
	t.Parallel()
	s, seed := seeded(t)
	e := newTestServer(t, s)

	rr, payload := serve(t, e, http.MethodGet, "/catalog/genre/"+strconv.Itoa(seed.SciFi)+"/delete", "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, true, payload["blocked"])
	assert.Equal(t, "Science Fiction", payload["target"].(map[string]any)["name"])
	assert.Len(t, payload["dependents"], 1)

	rr, _ = serve(t, e, http.MethodGet, "/catalog/genre/999/delete", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlers_DeleteBlocked(t *testing.T) {
	t.Parallel()
	s, seed := seeded(t)
	e := newTestServer(t, s)

	rr, payload := serve(t, e, http.MethodPost, "/catalog/genre/"+strconv.Itoa(seed.SciFi)+"/delete", "", "")
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
	assert.Equal(t, errcodes.CodeIntegrityBlocked, payload["error"].(map[string]any)["code"])

	dependents := payload["dependents"].([]any)
	require.Len(t, dependents, 1)
	assert.Equal(t, "Dune", dependents[0].(map[string]any)["title"])

	_, err := s.FindByID(context.Background(), models.KindGenre, seed.SciFi)
	require.NoError(t, err)
}

func TestHandlers_DeleteIsIdempotent(t *testing.T) {
	t.Parallel()
	s, seed := seeded(t)
	e := newTestServer(t, s)
	target := "/catalog/genre/" + strconv.Itoa(seed.Poetry) + "/delete"

	rr, payload := serve(t, e, http.MethodPost, target, "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "deleted", payload["outcome"])
	assert.Equal(t, "/catalog/genres", payload["redirect"])

	rr, payload = serve(t, e, http.MethodPost, target, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "not_found", payload["outcome"])
}

func TestHandlers_StoreFailure(t *testing.T) {
	t.Parallel()
	s, seed := seeded(t)
	e := newTestServer(t, &brokenStore{Store: s, kind: models.KindBook})

	rr, payload := serve(t, e, http.MethodPost, "/catalog/genre/"+strconv.Itoa(seed.Poetry)+"/delete", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, errcodes.CodeStoreUnavailable, payload["error"].(map[string]any)["code"])
}
