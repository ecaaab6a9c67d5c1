package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// WriteText prints v for a terminal. Texters print themselves; anything else is
// flattened into "path: value" lines.
func WriteText(w io.Writer, v any) error {
	if t, ok := v.(Texter); ok {
		return t.WriteText(w)
	}
	x, err := toGeneric(v)
	if err != nil {
		return err
	}
	var lines []string
	flatten("", x, &lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func flatten(prefix string, v any, out *[]string) {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(join(prefix, k), t[k], out)
		}
	case []any:
		if len(t) == 0 {
			*out = append(*out, prefix+": []")
		}
		for i, it := range t {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), it, out)
		}
	case nil:
		*out = append(*out, prefix+": -")
	case json.Number:
		*out = append(*out, prefix+": "+t.String())
	default:
		*out = append(*out, fmt.Sprintf("%s: %v", prefix, strings.TrimSpace(fmt.Sprint(t))))
	}
}

func join(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + "." + k
}
