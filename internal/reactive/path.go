package reactive

import (
	"strings"

	"github.com/spf13/cast"
)

// DataHost resolves top-level path segments, letting component instances
// proxy their root data through watch paths.
type DataHost interface {
	Resolve(key string) (any, bool)
}

func validPathChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '$', r == '.':
		return true
	}
	return false
}

// parsePath compiles a dot-delimited path into a getter that returns nil
// as soon as any link is missing. Numeric segments index sequences.
// Returns nil for paths outside the supported grammar.
func parsePath(path string) func(vm any) any {
	if path == "" || strings.ContainsFunc(path, func(r rune) bool { return !validPathChar(r) }) {
		return nil
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil
		}
	}
	return func(vm any) any {
		cur := vm
		for _, seg := range segments {
			if cur == nil {
				return nil
			}
			switch c := cur.(type) {
			case *Map:
				cur = c.Get(seg)
			case *Slice:
				idx, err := cast.ToIntE(seg)
				if err != nil || idx < 0 {
					return nil
				}
				cur = c.Index(idx)
			case DataHost:
				v, ok := c.Resolve(seg)
				if !ok {
					return nil
				}
				cur = v
			default:
				return nil
			}
		}
		return cur
	}
}
