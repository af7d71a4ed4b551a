package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/locallibrary/pkg/binder"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/pipeline"
)

// FormOptions supplies the choices a kind's form offers, such as the authors
// a book can name. in is what the form currently holds, so choices already
// made can be marked. Options accompany rejected writes so the form can be
// redrawn.
type FormOptions func(ctx context.Context, in pipeline.Input) (map[string]any, error)

// Handlers serves the write and delete routes every kind shares.
type Handlers[T models.Entity] struct {
	resource    *Resource[T]
	listPath    string
	formOptions FormOptions
}

func NewHandlers[T models.Entity](r *Resource[T], listPath string, formOptions FormOptions) *Handlers[T] {
	return &Handlers[T]{resource: r, listPath: listPath, formOptions: formOptions}
}

// Register mounts create, update and delete under the kind's path segment.
func (h *Handlers[T]) Register(g *echo.Group) {
	kind := string(h.resource.Kind())
	g.GET("/"+kind+"/create", h.CreateForm)
	g.POST("/"+kind+"/create", h.Create)
	g.POST("/"+kind+"/:id/update", h.Update)
	g.GET("/"+kind+"/:id/delete", h.DeletePreview)
	g.POST("/"+kind+"/:id/delete", h.Delete)
}

type formResponse struct {
	Options map[string]any `json:"options"`
}

// CreateForm returns what an empty create form needs.
func (h *Handlers[T]) CreateForm(c echo.Context) error {
	options, err := h.options(c.Request().Context(), pipeline.Input{})
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, formResponse{Options: options}))
}

func (h *Handlers[T]) Create(c echo.Context) error {
	ctx := c.Request().Context()

	in, err := binder.Input(c)
	if err != nil {
		return errors.WithStack(err)
	}

	res, err := h.resource.Create(ctx, in)
	if err != nil {
		return errors.WithStack(err)
	}
	if res.Failed {
		return h.validationFailed(c, res.Errors, res.PreservedInput)
	}

	view := NewView(res.Record)
	status := http.StatusCreated
	if res.Existing {
		status = http.StatusOK
		view.With("existing", true)
	}
	c.Response().Header().Set(echo.HeaderLocation, res.Record.Derived()["url"])
	return errors.WithStack(c.JSON(status, view))
}

func (h *Handlers[T]) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, h.resource.Kind())
	if err != nil {
		return err
	}

	in, err := binder.Input(c)
	if err != nil {
		return errors.WithStack(err)
	}

	res, err := h.resource.Update(ctx, id, in)
	if err != nil {
		return errors.WithStack(err)
	}
	if res.Failed {
		return h.validationFailed(c, res.Errors, res.PreservedInput)
	}

	c.Response().Header().Set(echo.HeaderLocation, res.Record.Derived()["url"])
	return errors.WithStack(c.JSON(http.StatusOK, NewView(res.Record)))
}

type deletePreview struct {
	Target     *View   `json:"target"`
	Dependents []*View `json:"dependents"`
	Blocked    bool    `json:"blocked"`
}

// DeletePreview shows what a delete would remove, or what stands in its way.
func (h *Handlers[T]) DeletePreview(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, h.resource.Kind())
	if err != nil {
		return err
	}

	res, err := h.resource.CheckDelete(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}
	if res.Outcome == OutcomeNotFound {
		return errcodes.NotFound(h.resource.Kind().Label())
	}

	return errors.WithStack(c.JSON(http.StatusOK, deletePreview{
		Target:     NewView(res.Target),
		Dependents: Views(res.Dependents),
		Blocked:    res.Outcome == OutcomeBlocked,
	}))
}

type deleteResponse struct {
	Outcome  Outcome `json:"outcome"`
	Redirect string  `json:"redirect"`
}

// Delete refuses with 409 while dependents exist. Deleting a record that is
// already gone succeeds.
func (h *Handlers[T]) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := ParseID(c, h.resource.Kind())
	if err != nil {
		return err
	}

	res, err := h.resource.Delete(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	if res.Outcome == OutcomeBlocked {
		status, payload := errcodes.Payload(errcodes.IntegrityBlocked(h.resource.Kind().Label()))
		payload["target"] = NewView(res.Target)
		payload["dependents"] = Views(res.Dependents)
		return errors.WithStack(c.JSON(status, payload))
	}

	return errors.WithStack(c.JSON(http.StatusOK, deleteResponse{
		Outcome:  res.Outcome,
		Redirect: h.listPath,
	}))
}

func (h *Handlers[T]) validationFailed(c echo.Context, fieldErrors []pipeline.FieldError, input pipeline.Input) error {
	options, err := h.options(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	status, payload := errcodes.Payload(errcodes.ValidationFailed())
	payload["errors"] = fieldErrors
	payload["input"] = input
	payload["options"] = options
	return errors.WithStack(c.JSON(status, payload))
}

func (h *Handlers[T]) options(ctx context.Context, in pipeline.Input) (map[string]any, error) {
	if h.formOptions == nil {
		return map[string]any{}, nil
	}
	return h.formOptions(ctx, in)
}

// ParseID reads the :id path parameter. An id that can't name a record is
// reported the same way as one that names nothing.
func ParseID(c echo.Context, kind models.Kind) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, errcodes.NotFound(kind.Label())
	}
	return id, nil
}
