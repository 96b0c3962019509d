package noderesolver

import (
	"strings"
)

// matchExports maps subpath ("." or "./x") through a package exports field.
// It returns the package-relative target, or false when nothing matches.
func matchExports(exports any, subpath string, conditions map[string]bool) (string, bool) {
	if obj, ok := exports.(object); ok && isSubpathMap(obj) {
		return matchSubpathMap(obj, subpath, conditions)
	}

	// A string, array or conditions object is shorthand for {".": exports}.
	if subpath != "." {
		return "", false
	}
	return resolveTarget(exports, "", conditions)
}

func isSubpathMap(obj object) bool {
	return len(obj) > 0 && strings.HasPrefix(obj[0].key, ".")
}

func matchSubpathMap(obj object, subpath string, conditions map[string]bool) (string, bool) {
	for _, m := range obj {
		if m.key == subpath && !strings.Contains(m.key, "*") {
			return resolveTarget(m.value, "", conditions)
		}
	}

	var (
		bestKey   string
		bestValue any
		bestMatch string
		found     bool
	)
	for _, m := range obj {
		prefix, suffix, ok := strings.Cut(m.key, "*")
		if !ok || strings.Contains(suffix, "*") {
			continue
		}
		if !strings.HasPrefix(subpath, prefix) || !strings.HasSuffix(subpath, suffix) {
			continue
		}
		if len(subpath) < len(prefix)+len(suffix) {
			continue
		}
		if found && !patternKeyLess(bestKey, m.key) {
			continue
		}
		bestKey = m.key
		bestValue = m.value
		bestMatch = subpath[len(prefix) : len(subpath)-len(suffix)]
		found = true
	}

	if !found {
		return "", false
	}
	return resolveTarget(bestValue, bestMatch, conditions)
}

// patternKeyLess reports whether b is a more specific pattern than a:
// a longer prefix before "*" wins, then the longer key.
func patternKeyLess(a, b string) bool {
	ai := strings.IndexByte(a, '*')
	bi := strings.IndexByte(b, '*')
	if ai != bi {
		return bi > ai
	}
	return len(b) > len(a)
}

func resolveTarget(target any, wildcard string, conditions map[string]bool) (string, bool) {
	switch t := target.(type) {
	case string:
		if !strings.HasPrefix(t, "./") {
			return "", false
		}
		return strings.ReplaceAll(t, "*", wildcard), true
	case []any:
		for _, item := range t {
			if resolved, ok := resolveTarget(item, wildcard, conditions); ok {
				return resolved, true
			}
		}
		return "", false
	case object:
		for _, m := range t {
			if m.key != "default" && !conditions[m.key] {
				continue
			}
			if resolved, ok := resolveTarget(m.value, wildcard, conditions); ok {
				return resolved, true
			}
		}
		return "", false
	default:
		// null excludes the subpath.
		return "", false
	}
}
