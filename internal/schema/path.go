// ABOUTME: Dotted-path access into nested entity data.
// ABOUTME: Segments address map keys or, when numeric, slice indexes ("addresses.0.street").

package schema

import (
	"strconv"
	"strings"
)

// Lookup returns the value at a dotted path.
func Lookup(data Record, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}
	var cur any = map[string]any(data)
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case Record:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Assign sets the value at a dotted path, creating intermediate objects and
// growing slices as needed.
func Assign(data Record, path string, value any) {
	if data == nil || path == "" {
		return
	}
	segs := strings.Split(path, ".")
	data[segs[0]] = assignInto(data[segs[0]], segs[1:], value)
}

func assignInto(node any, segs []string, value any) any {
	if len(segs) == 0 {
		return value
	}
	seg := segs[0]
	if i, err := strconv.Atoi(seg); err == nil && i >= 0 {
		list, _ := node.([]any)
		for len(list) <= i {
			list = append(list, nil)
		}
		list[i] = assignInto(list[i], segs[1:], value)
		return list
	}
	var m map[string]any
	switch t := node.(type) {
	case map[string]any:
		m = t
	case Record:
		m = t
	default:
		m = map[string]any{}
	}
	m[seg] = assignInto(m[seg], segs[1:], value)
	return m
}
