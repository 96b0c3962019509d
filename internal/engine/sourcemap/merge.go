package sourcemap

import (
	"slices"
	"sort"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Merge chains two maps. outer maps final output to intermediate code and inner maps
// intermediate code to the original sources. The result maps final output straight to
// the original sources: its sources and sourcesContent are inner's, never outer's.
// Outer segments whose intermediate position has no inner mapping are dropped.
func Merge(outer, inner *domain.SourceMap) (*domain.SourceMap, error) {
	outerLines, err := Decode(outer.Mappings)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to decode outer map")
	}
	innerLines, err := Decode(inner.Mappings)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to decode inner map")
	}

	names := nameTable{list: []string{}, index: make(map[string]int)}
	merged := make([]Line, len(outerLines))

	for i, line := range outerLines {
		for _, seg := range line {
			if seg.SourceIndex < 0 {
				continue
			}
			orig, ok := find(innerLines, seg.OriginalLine, seg.OriginalColumn)
			if !ok {
				continue
			}

			out := Segment{
				GeneratedColumn: seg.GeneratedColumn,
				SourceIndex:     orig.SourceIndex,
				OriginalLine:    orig.OriginalLine,
				OriginalColumn:  orig.OriginalColumn,
				NameIndex:       -1,
			}
			if name, ok := nameAt(inner.Names, orig.NameIndex); ok {
				out.NameIndex = names.add(name)
			} else if name, ok := nameAt(outer.Names, seg.NameIndex); ok {
				out.NameIndex = names.add(name)
			}
			merged[i] = append(merged[i], out)
		}
	}

	file := outer.File
	if file == "" {
		file = inner.File
	}

	return &domain.SourceMap{
		Version:        3,
		File:           file,
		SourceRoot:     inner.SourceRoot,
		Sources:        slices.Clone(inner.Sources),
		SourcesContent: slices.Clone(inner.SourcesContent),
		Names:          names.list,
		Mappings:       Encode(merged),
	}, nil
}

// find returns the last segment on line whose generated column is at or before column.
func find(lines []Line, line, column int) (Segment, bool) {
	if line < 0 || line >= len(lines) {
		return Segment{}, false
	}
	segs := lines[line]

	// Number of segments that start at or before column.
	n := sort.Search(len(segs), func(i int) bool {
		return segs[i].GeneratedColumn > column
	})
	if n == 0 {
		return Segment{}, false
	}

	seg := segs[n-1]
	if seg.SourceIndex < 0 {
		return Segment{}, false
	}
	return seg, true
}

func nameAt(names []string, i int) (string, bool) {
	if i < 0 || i >= len(names) {
		return "", false
	}
	return names[i], true
}

type nameTable struct {
	list  []string
	index map[string]int
}

func (t *nameTable) add(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	i := len(t.list)
	t.list = append(t.list, name)
	t.index[name] = i
	return i
}
