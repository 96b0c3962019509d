package esbuild

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	topLevelFunction = regexp.MustCompile(`(?m)^(?:export\s+(?:default\s+)?)?(?:async\s+)?function\s*\*?\s*([A-Z][A-Za-z0-9_$]*)\s*\(`)
	topLevelBinding  = regexp.MustCompile(`(?m)^(?:export\s+)?(?:const|let|var)\s+([A-Z][A-Za-z0-9_$]*)\s*=`)
)

// registrations returns $RefreshReg$ calls for every top-level declaration whose
// name looks like a component. Declarations are listed in source order.
func registrations(code string) string {
	type match struct {
		at   int
		name string
	}

	var found []match
	for _, re := range []*regexp.Regexp{topLevelFunction, topLevelBinding} {
		for _, m := range re.FindAllStringSubmatchIndex(code, -1) {
			found = append(found, match{at: m[0], name: code[m[2]:m[3]]})
		}
	}
	if len(found) == 0 {
		return ""
	}

	// Two regexps: merge by offset to keep source order.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].at < found[j-1].at; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}

	seen := make(map[string]bool, len(found))
	var b strings.Builder
	for _, m := range found {
		if seen[m.name] {
			continue
		}
		seen[m.name] = true
		b.WriteString("$RefreshReg$(")
		b.WriteString(m.name)
		b.WriteString(", ")
		b.WriteString(strconv.Quote(m.name))
		b.WriteString(");\n")
	}
	return b.String()
}
