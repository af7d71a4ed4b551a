package catalog

import (
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/locallibrary/pkg/models"
)

// View is a record as it leaves the service: its stored fields, its derived
// fields under "derived", and any related records under their own keys.
type View struct {
	record  models.Entity
	related map[string]any
}

// NewView returns nil for a nil record so optional relations serialize as
// null.
func NewView(e models.Entity) *View {
	if e == nil || isNilEntity(e) {
		return nil
	}
	return &View{record: e}
}

// Views maps NewView over records. The result is never nil.
func Views[T models.Entity](records []T) []*View {
	out := make([]*View, 0, len(records))
	for _, r := range records {
		out = append(out, NewView(r))
	}
	return out
}

// With attaches a related value, typically another *View or []*View.
func (v *View) With(key string, related any) *View {
	if v.related == nil {
		v.related = map[string]any{}
	}
	v.related[key] = related
	return v
}

func (v *View) Record() models.Entity {
	return v.record
}

func (v *View) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.record)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.WithStack(err)
	}
	fields["derived"] = v.record.Derived()
	for k, rel := range v.related {
		fields[k] = rel
	}
	return json.Marshal(fields)
}

// isNilEntity catches typed nil pointers stored in the interface.
func isNilEntity(e models.Entity) bool {
	switch r := e.(type) {
	case *models.Author:
		return r == nil
	case *models.Genre:
		return r == nil
	case *models.Book:
		return r == nil
	case *models.BookInstance:
		return r == nil
	}
	return false
}
