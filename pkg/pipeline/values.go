package pipeline

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Values are the sanitized fields of a write, with typed accessors for the
// coercions records need.
type Values struct {
	scalars map[string]string
	lists   map[string][]string
}

func (v Values) String(name string) string {
	return v.scalars[name]
}

func (v Values) Strings(name string) []string {
	return v.lists[name]
}

func (v Values) Int(name string) (int, error) {
	n, err := strconv.Atoi(v.scalars[name])
	if err != nil {
		return 0, errors.Wrapf(err, "field %q", name)
	}
	return n, nil
}

func (v Values) Ints(name string) ([]int, error) {
	list := v.lists[name]
	out := make([]int, 0, len(list))
	for _, s := range list {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", name)
		}
		out = append(out, n)
	}
	return out, nil
}

// Date returns nil for an empty field.
func (v Values) Date(name string) (*time.Time, error) {
	s := v.scalars[name]
	if s == "" {
		return nil, nil
	}
	t, err := ParseISODate(s)
	if err != nil {
		return nil, errors.Wrapf(err, "field %q", name)
	}
	return &t, nil
}
