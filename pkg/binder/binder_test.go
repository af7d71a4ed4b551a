package binder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Hello string `json:"hello" mod:"trim" validate:"max=9"`
	Omit  string `json:"-"`
}

type listParams struct {
	Status string `query:"status" json:"status" validate:"omitempty,oneof=Available Loaned"`
	Author *int   `query:"author" json:"author"`
}

var (
	goodJSON             = `{"hello":" world "}`
	unknownFieldsErrJSON = `{"hello":"world","foo":"bar"}`
	typeErrJSON          = `{"hello":123}`
	validationErrJSON    = `{"hello":"0123456789"}`
)

func TestNew(t *testing.T) {
	t.Parallel()
	b, err := New()
	require.NoError(t, err)
	assert.NotNil(t, b)

	t.Run("only allows application/json and application/x-www-form-urlencoded", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationXML)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "Unsupported Media Type")
	})

	t.Run("disallows unknown fields", func(tt *testing.T) {
		c := newContext(unknownFieldsErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "foo"`)
	})

	t.Run("returns a good message for type errors", func(tt *testing.T) {
		c := newContext(typeErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `should be of type string`)
	})

	t.Run("use mod tag to modify params", func(tt *testing.T) {
		c := newContext(goodJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "world", p.Hello)
	})

	t.Run("use validate tag to validate params", func(tt *testing.T) {
		c := newContext(validationErrJSON, echo.MIMEApplicationJSON)
		p := params{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), "length must be less than or equal to 9 characters")
	})

	t.Run("binds query params on GET", func(tt *testing.T) {
		c := newGetContext("/?status=Loaned&author=4")
		p := listParams{}
		err := b.Bind(&p, c)
		require.NoError(tt, err)
		assert.Equal(tt, "Loaned", p.Status)
		require.NotNil(tt, p.Author)
		assert.Equal(tt, 4, *p.Author)
	})

	t.Run("validates query params", func(tt *testing.T) {
		c := newGetContext("/?status=Lost")
		p := listParams{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `"status" must be one of the following: "Available", "Loaned"`)
	})

	t.Run("rejects unknown query params", func(tt *testing.T) {
		c := newGetContext("/?page=2")
		p := listParams{}
		err := b.Bind(&p, c)
		assert.Contains(tt, err.Error(), `Unknown Parameter "page"`)
	})
}

func TestInput(t *testing.T) {
	t.Parallel()

	t.Run("json object", func(tt *testing.T) {
		c := newContext(`{"title":"Dune","genre":["1","2"],"author":3}`, echo.MIMEApplicationJSON)
		in, err := Input(c)
		require.NoError(tt, err)
		assert.Equal(tt, "Dune", in["title"])
		assert.Equal(tt, []any{"1", "2"}, in["genre"])
		assert.Equal(tt, float64(3), in["author"])
	})

	t.Run("form body", func(tt *testing.T) {
		c := newContext("name=Fantasy&genre=1&genre=2", echo.MIMEApplicationForm)
		in, err := Input(c)
		require.NoError(tt, err)
		assert.Equal(tt, pipeline.Input{"name": "Fantasy", "genre": []string{"1", "2"}}, in)
	})

	t.Run("empty body", func(tt *testing.T) {
		c := newContext("", echo.MIMEApplicationJSON)
		in, err := Input(c)
		require.NoError(tt, err)
		assert.Empty(tt, in)
	})

	t.Run("malformed json", func(tt *testing.T) {
		c := newContext(`{"name":`, echo.MIMEApplicationJSON)
		_, err := Input(c)
		assert.Equal(tt, errcodes.MalformedPayload(), err)
	})

	t.Run("unsupported type", func(tt *testing.T) {
		c := newContext(`<name/>`, echo.MIMEApplicationXML)
		_, err := Input(c)
		assert.Equal(tt, errcodes.UnsupportedMediaType(), err)
	})
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}

func newGetContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr)
}
