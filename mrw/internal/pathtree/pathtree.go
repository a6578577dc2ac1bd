// Package pathtree provides copy-on-write get/set/merge helpers over
// nested string-keyed maps. Writes never mutate the input tree: the
// spine down to the touched key is cloned one level at a time and every
// untouched sibling is shared with the previous tree, so unrelated
// subtrees keep reference equality across updates.
package pathtree

import (
	"fmt"
	"strings"
)

// PathError reports a traversal through a missing or non-map key.
type PathError struct {
	Path []string
	Key  string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("pathtree: key %q not found under %q", e.Key, strings.Join(e.Path, "."))
}

// Get traverses root along path and returns the value at the end.
// A missing or non-traversable intermediate key fails with *PathError;
// nothing is implicitly created.
func Get(root map[string]any, path ...string) (any, error) {
	var cur any = root
	for i, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, &PathError{Path: path[:i], Key: key}
		}
		cur, ok = m[key]
		if !ok {
			return nil, &PathError{Path: path[:i], Key: key}
		}
	}
	return cur, nil
}

// Set returns a new tree with value placed at path, creating
// intermediate maps as needed. The target key need not pre-exist.
// A zero-length path returns root unchanged.
func Set(root map[string]any, path []string, value any) map[string]any {
	if len(path) == 0 {
		return root
	}
	next := clone(root)
	key := path[0]
	if len(path) == 1 {
		next[key] = value
		return next
	}
	child, _ := next[key].(map[string]any)
	next[key] = Set(child, path[1:], value)
	return next
}

// Merge deep-merges src into dst and returns the merged tree. Nested
// maps are merged recursively; scalar values from src win. Neither
// input is mutated and map values originating in src are deep-copied,
// so the result never aliases src.
func Merge(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	next := clone(dst)
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := next[k].(map[string]any); ok {
				next[k] = Merge(dm, sm)
			} else {
				next[k] = Merge(nil, sm)
			}
			continue
		}
		next[k] = v
	}
	return next
}

// clone copies one map level, sharing all values.
func clone(m map[string]any) map[string]any {
	next := make(map[string]any, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	return next
}
