package domain

import "slices"

// Output is one entry of a generated bundle.
type Output interface {
	// Name returns the output file name.
	Name() string
	isOutput()
}

// Chunk is emitted executable code with an optional source map.
type Chunk struct {
	FileName string
	Code     string
	Map      *SourceMap
}

// Name returns the chunk's file name.
func (c *Chunk) Name() string { return c.FileName }

func (*Chunk) isOutput() {}

// Asset is an opaque payload emitted alongside the chunks.
type Asset struct {
	FileName string
	Source   []byte
}

// Name returns the asset's file name.
func (a *Asset) Name() string { return a.FileName }

func (*Asset) isOutput() {}

// Bundle maps output file names to generated outputs.
type Bundle map[string]Output

// ChunkNames returns the names of all chunk entries in sorted order.
func (b Bundle) ChunkNames() []string {
	names := make([]string, 0, len(b))
	for name, out := range b {
		if _, ok := out.(*Chunk); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}
