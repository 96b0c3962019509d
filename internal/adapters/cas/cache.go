// Package cas implements a content-addressed cache of transformer results.
package cas

import (
	"context"
	"encoding/binary"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// TransformCache memoizes a ports.Transformer by the digest of the full request.
// Concurrent requests for the same digest share one engine call. Failed
// transforms and results with diagnostics are never stored.
type TransformCache struct {
	inner   ports.Transformer
	entries *lru.Cache[uint64, domain.TransformResult]
	group   singleflight.Group
}

var _ ports.Transformer = (*TransformCache)(nil)

// NewTransformCache wraps inner with an LRU cache holding up to size results.
func NewTransformCache(inner ports.Transformer, size int) (*TransformCache, error) {
	entries, err := lru.New[uint64, domain.TransformResult](size)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create transform cache"), "size", size)
	}
	return &TransformCache{inner: inner, entries: entries}, nil
}

// Transform returns the cached result for req or runs the inner transformer.
func (c *TransformCache) Transform(ctx context.Context, req domain.TransformRequest) (domain.TransformResult, error) {
	key := Digest(req)
	if res, ok := c.entries.Get(key); ok {
		return res, nil
	}

	v, err, _ := c.group.Do(strconv.FormatUint(key, 16), func() (any, error) {
		res, err := c.inner.Transform(ctx, req)
		if err != nil {
			return domain.TransformResult{}, err
		}
		if len(res.Errors) == 0 {
			c.entries.Add(key, res)
		}
		return res, nil
	})
	if err != nil {
		return domain.TransformResult{}, err
	}
	return v.(domain.TransformResult), nil
}

// Len returns the number of cached results.
func (c *TransformCache) Len() int {
	return c.entries.Len()
}

// Digest returns the cache key of req: the xxhash of a length-prefixed
// encoding of every request field. Define entries are hashed in key order.
func Digest(req domain.TransformRequest) uint64 {
	d := xxhash.New()

	writeString(d, req.ID)
	writeString(d, req.Code)
	writeString(d, string(req.Dialect))
	writeBool(d, req.Sourcemap)
	writeBool(d, req.Refresh)
	writeBool(d, req.JSXDev)

	jsx := req.Options.JSX
	writeString(d, string(jsx.Runtime))
	writeString(d, jsx.ImportSource)
	writeString(d, jsx.Factory)
	writeString(d, jsx.Fragment)
	writeString(d, req.Options.Target)

	keys := make([]string, 0, len(req.Options.Define))
	for k := range req.Options.Define {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	writeLen(d, len(keys))
	for _, k := range keys {
		writeString(d, k)
		writeString(d, req.Options.Define[k])
	}

	return d.Sum64()
}

func writeLen(d *xxhash.Digest, n int) {
	var buf [binary.MaxVarintLen64]byte
	_, _ = d.Write(buf[:binary.PutUvarint(buf[:], uint64(n))]) //nolint:gosec // lengths are non-negative
}

func writeString(d *xxhash.Digest, s string) {
	writeLen(d, len(s))
	_, _ = d.WriteString(s)
}

func writeBool(d *xxhash.Digest, b bool) {
	if b {
		_, _ = d.Write([]byte{1})
		return
	}
	_, _ = d.Write([]byte{0})
}
