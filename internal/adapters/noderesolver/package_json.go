package noderesolver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/zerr"
)

const packageJSONFile = "package.json"

// packageJSON holds the fields of a package manifest that resolution reads.
type packageJSON struct {
	dir        string
	typ        string
	fields     map[string]json.RawMessage
	exports    any
	hasExports bool
}

// stringField returns a top-level string field such as "main" or "module".
func (p *packageJSON) stringField(name string) (string, bool) {
	raw, ok := p.fields[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// packageCache memoizes manifests by directory. Directories without a
// manifest are cached as nil.
type packageCache struct {
	entries *lru.Cache[string, *packageJSON]
}

func newPackageCache(size int) (*packageCache, error) {
	entries, err := lru.New[string, *packageJSON](size)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create package.json cache"), "size", size)
	}
	return &packageCache{entries: entries}, nil
}

// load returns the manifest in dir, or nil when there is none.
func (c *packageCache) load(dir string) (*packageJSON, error) {
	if pkg, ok := c.entries.Get(dir); ok {
		return pkg, nil
	}

	pkg, err := readPackageJSON(dir)
	if err != nil {
		return nil, err
	}
	c.entries.Add(dir, pkg)
	return pkg, nil
}

// nearest walks up from dir to the closest manifest. The walk never leaves
// the package that contains dir, so it stops at a node_modules directory.
func (c *packageCache) nearest(dir string) (*packageJSON, error) {
	for {
		if filepath.Base(dir) == nodeModules {
			return nil, nil
		}
		pkg, err := c.load(dir)
		if err != nil || pkg != nil {
			return pkg, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func readPackageJSON(dir string) (*packageJSON, error) {
	path := filepath.Join(dir, packageJSONFile)
	data, err := os.ReadFile(path) //nolint:gosec // path is built from the resolution root
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read package.json"), "path", path)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse package.json"), "path", path)
	}

	pkg := &packageJSON{dir: dir, fields: fields}
	if typ, ok := pkg.stringField("type"); ok {
		pkg.typ = typ
	}

	if raw, ok := fields["exports"]; ok {
		exports, err := decodeOrdered(raw)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to parse package.json exports"), "path", path)
		}
		pkg.exports = exports
		pkg.hasExports = exports != nil
	}

	return pkg, nil
}

// member is one key of a JSON object, in document order.
type member struct {
	key   string
	value any
}

// object is a JSON object that keeps its key order. Condition matching in
// exports maps depends on that order.
type object []member

// decodeOrdered decodes JSON into string, nil, []any or object values.
func decodeOrdered(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeValue(dec)
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var obj object
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				value, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, member{key: key, value: value})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			list := []any{}
			for dec.More() {
				value, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
	}

	return tok, nil
}
