package domain

// Resolution is the outcome of resolving an import specifier.
// A nil *Resolution means the host should fall back to its own resolution.
type Resolution struct {
	// ID is the resolved absolute path, or the specifier itself for externals.
	ID string
	// External marks the module as provided by the platform.
	External bool
	// SideEffects is false for modules that may be dropped when unused.
	SideEffects bool
	// Format is the module format of the resolved file.
	Format ModuleFormat
}

// ResolvedModule is what a resolver engine returns for a successful lookup.
type ResolvedModule struct {
	Path       string
	ModuleType ModuleFormat
}
