package books

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/locallibrary/pkg/binder"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/fanout"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/shishobooks/locallibrary/pkg/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) (*echo.Echo, storetest.Seed) {
	t.Helper()
	s := setupTestStore(t)
	seed := storetest.SeedCatalog(t, s)

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	RegisterRoutesWithGroup(e.Group("/catalog"), s, pipeline.New(), fanout.Options{OperationTimeout: 5 * time.Second})
	return e, seed
}

func doRequest(t *testing.T, e *echo.Echo, req *http.Request) (int, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload), rr.Body.String())
	return rr.Code, payload
}

func TestHandlerList(t *testing.T) {
	t.Parallel()
	e, seed := setupTestServer(t)

	code, payload := doRequest(t, e, httptest.NewRequest(http.MethodGet, "/catalog/books", nil))
	require.Equal(t, http.StatusOK, code)
	books := payload["books"].([]any)
	require.Len(t, books, 2)
	dune := books[0].(map[string]any)
	assert.Equal(t, "Dune", dune["title"])
	assert.Equal(t, "Herbert,Frank", dune["author"].(map[string]any)["derived"].(map[string]any)["name"])

	code, payload = doRequest(t, e, httptest.NewRequest(http.MethodGet, "/catalog/books?genre="+strconv.Itoa(seed.SciFi), nil))
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, payload["total"])
}

func TestHandlerList_BadFilter(t *testing.T) {
	t.Parallel()
	e, _ := setupTestServer(t)

	code, _ := doRequest(t, e, httptest.NewRequest(http.MethodGet, "/catalog/books?author=0", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = doRequest(t, e, httptest.NewRequest(http.MethodGet, "/catalog/books?shelf=3", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestHandlerRetrieve(t *testing.T) {
	t.Parallel()
	e, seed := setupTestServer(t)

	code, payload := doRequest(t, e, httptest.NewRequest(http.MethodGet, "/catalog/book/"+strconv.Itoa(seed.Hobbit), nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "The Hobbit", payload["title"])
	assert.Equal(t, "Tolkien", payload["author"].(map[string]any)["family_name"])
	assert.Len(t, payload["genres"], 1)
	instances := payload["instances"].([]any)
	require.Len(t, instances, 1)
	assert.Equal(t, "March 3rd, 2026", instances[0].(map[string]any)["derived"].(map[string]any)["due_back_formatted"])
}

func TestHandlerCreate_RejectedKeepsGenreChoices(t *testing.T) {
	t.Parallel()
	e, seed := setupTestServer(t)

	form := url.Values{
		"title":  {"Untitled"},
		"author": {strconv.Itoa(seed.Tolkien)},
		"genre":  {strconv.Itoa(seed.Poetry), strconv.Itoa(seed.Fantasy)},
	}
	req := httptest.NewRequest(http.MethodPost, "/catalog/book/create", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)

	code, payload := doRequest(t, e, req)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Len(t, payload["errors"], 2)

	options := payload["options"].(map[string]any)
	assert.Len(t, options["authors"], 2)
	checked := map[string]bool{}
	for _, g := range options["genres"].([]any) {
		genre := g.(map[string]any)
		checked[genre["name"].(string)] = genre["checked"].(bool)
	}
	assert.Equal(t, map[string]bool{"Fantasy": true, "Poetry": true, "Science Fiction": false}, checked)
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()
	e, seed := setupTestServer(t)

	body := `{"title":"Silmarillion","author":"` + strconv.Itoa(seed.Tolkien) + `","summary":"Myths.","isbn":"978","genre":"` + strconv.Itoa(seed.Fantasy) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/catalog/book/create", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	code, payload := doRequest(t, e, req)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, []any{float64(seed.Fantasy)}, payload["genre_ids"])
}

func TestHandlerUpdateForm(t *testing.T) {
	t.Parallel()
	e, seed := setupTestServer(t)

	code, payload := doRequest(t, e, httptest.NewRequest(http.MethodGet, "/catalog/book/"+strconv.Itoa(seed.Hobbit)+"/update", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "The Hobbit", payload["record"].(map[string]any)["title"])
}

func TestHandlerDelete(t *testing.T) {
	t.Parallel()
	e, seed := setupTestServer(t)

	code, payload := doRequest(t, e, httptest.NewRequest(http.MethodPost, "/catalog/book/"+strconv.Itoa(seed.Dune)+"/delete", nil))
	require.Equal(t, http.StatusConflict, code)
	assert.Len(t, payload["dependents"], 1)
}
