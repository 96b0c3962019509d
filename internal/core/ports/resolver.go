package ports

import "go.trai.ch/kiln/internal/core/domain"

//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks

// Resolver maps an import specifier to a file on disk.
type Resolver interface {
	// Resolve looks up specifier relative to dir.
	// Built-in platform modules are reported as *domain.BuiltinModuleError.
	Resolve(dir, specifier string) (domain.ResolvedModule, error)
}

// ResolverFactory builds a Resolver for one build.
type ResolverFactory interface {
	NewResolver(opts domain.ResolverOptions) (Resolver, error)
}
