package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of file system change.
type WatchOp uint8

const (
	// OpCreate means a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite means a file was modified.
	OpWrite
	// OpRemove means a file or directory was removed.
	OpRemove
	// OpRename means a file or directory was renamed.
	OpRename
)

func (op WatchOp) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WatchEvent is one change reported by a Watcher.
type WatchEvent struct {
	// Path is the absolute path that changed.
	Path      string
	Operation WatchOp
}

// Watcher reports source changes so watch mode can rebuild.
type Watcher interface {
	// Start watches root recursively until ctx is done or Stop is called.
	Start(ctx context.Context, root string) error
	// Stop releases the watcher.
	Stop() error
	// Events yields changes until the watcher stops.
	Events() iter.Seq[WatchEvent]
}
