package pipeline

import (
	"fmt"
	"net/url"
	"strings"
)

// Input is a write request exactly as submitted: field name to raw value.
// Values are strings, or string lists for fields submitted more than once.
// Anything else (numbers from a JSON body, say) is stringified when read.
type Input map[string]any

// InputFromValues converts decoded form values. A field submitted once stays
// a scalar so that the preserved input mirrors what the client sent.
func InputFromValues(values url.Values) Input {
	in := make(Input, len(values))
	for k, vs := range values {
		switch len(vs) {
		case 0:
			in[k] = ""
		case 1:
			in[k] = vs[0]
		default:
			list := make([]string, len(vs))
			copy(list, vs)
			in[k] = list
		}
	}
	return in
}

// Preserved returns a copy of the input that later mutation of either side
// can't affect.
func (in Input) Preserved() Input {
	out := make(Input, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case []string:
			list := make([]string, len(t))
			copy(list, t)
			out[k] = list
		case []any:
			list := make([]any, len(t))
			copy(list, t)
			out[k] = list
		default:
			out[k] = v
		}
	}
	return out
}

// scalar reads a single-valued field. The second return is false when the
// field was not submitted at all.
func (in Input) scalar(name string) (string, bool) {
	v, ok := in[name]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case []string:
		if len(t) == 0 {
			return "", true
		}
		return t[0], true
	case []any:
		if len(t) == 0 {
			return "", true
		}
		return stringify(t[0]), true
	default:
		return stringify(t), true
	}
}

// List reads a multi-valued field. Absent becomes an empty list and a lone
// scalar becomes a one-element list.
func (in Input) List(name string) []string {
	v, ok := in[name]
	if !ok || v == nil {
		return []string{}
	}
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, stringify(item))
		}
		return out
	case string:
		return []string{t}
	default:
		return []string{stringify(t)}
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; ids should not come back as "3e+00".
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%f", t), "0"), ".")
	default:
		return fmt.Sprint(t)
	}
}
