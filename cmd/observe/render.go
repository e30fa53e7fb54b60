package main

import (
	"sort"
	"strings"

	"github.com/valyala/quicktemplate"
)

const maxRenderDepth = 32

// formatValue renders plain store data as compact JSON-like text.
func formatValue(v any) string {
	sb := &strings.Builder{}
	qw := quicktemplate.AcquireWriter(sb)
	defer quicktemplate.ReleaseWriter(qw)

	writeValue(qw.N(), v, 0)
	return sb.String()
}

func writeValue(w *quicktemplate.QWriter, v any, depth int) {
	if depth > maxRenderDepth {
		w.S("…")
		return
	}

	switch x := v.(type) {
	case nil:
		w.S("null")
	case string:
		w.Q(x)
	case int:
		w.D(x)
	case float64:
		w.F(x)
	case bool:
		if x {
			w.S("true")
		} else {
			w.S("false")
		}
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		w.S("{")
		for i, k := range keys {
			if i > 0 {
				w.S(", ")
			}
			w.Q(k)
			w.S(": ")
			writeValue(w, x[k], depth+1)
		}
		w.S("}")
	case []any:
		w.S("[")
		for i, item := range x {
			if i > 0 {
				w.S(", ")
			}
			writeValue(w, item, depth+1)
		}
		w.S("]")
	default:
		w.V(x)
	}
}
