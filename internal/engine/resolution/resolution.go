// Package resolution maps import specifiers to files through the resolver engine.
package resolution

import (
	"path/filepath"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/format"
)

// Adapter resolves specifiers for one build. Resolver failures never escape it:
// the host's own resolution is the fallback.
type Adapter struct {
	resolver    ports.Resolver
	nodeModules bool
	cwd         string
	logger      ports.Logger
}

// New returns an Adapter. Bare specifiers are only resolved when nodeModules is set;
// entry points without an importer resolve from cwd.
func New(resolver ports.Resolver, nodeModules bool, cwd string, logger ports.Logger) *Adapter {
	return &Adapter{
		resolver:    resolver,
		nodeModules: nodeModules,
		cwd:         cwd,
		logger:      logger,
	}
}

// Resolve returns nil when the adapter has no opinion about specifier.
func (a *Adapter) Resolve(importer, specifier string) *domain.Resolution {
	if !a.nodeModules && IsBare(specifier) {
		return nil
	}

	dir := a.cwd
	if importer != "" {
		dir = filepath.Dir(importer)
	}

	resolved, err := a.resolver.Resolve(dir, specifier)
	if err != nil {
		if strings.HasPrefix(err.Error(), domain.BuiltinModuleMarker) {
			return &domain.Resolution{ID: specifier, External: true, SideEffects: false}
		}
		if a.logger != nil {
			a.logger.Debug("resolve " + specifier + " from " + dir + ": " + err.Error())
		}
		return nil
	}

	modFormat := format.Infer(resolved.Path)
	if modFormat == domain.FormatUnknown {
		modFormat = resolved.ModuleType
	}
	if modFormat == domain.FormatUnknown {
		modFormat = domain.FormatCommonJS
	}

	return &domain.Resolution{
		ID:          resolved.Path,
		SideEffects: true,
		Format:      modFormat,
	}
}

// IsBare reports whether specifier is neither relative nor absolute.
func IsBare(specifier string) bool {
	switch {
	case specifier == "." || specifier == "..":
		return false
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		return false
	case filepath.IsAbs(specifier) || strings.HasPrefix(specifier, "/"):
		return false
	default:
		return true
	}
}

// DefaultOptions is the resolver configuration every build starts from.
func DefaultOptions() domain.ResolverOptions {
	on := true
	return domain.ResolverOptions{
		Extensions:     []string{".mjs", ".js", ".ts", ".jsx", ".tsx", ".json", ".node"},
		ConditionNames: []string{"import", "require", "browser", "node", "default"},
		Builtins:       &on,
		ModuleType:     &on,
	}
}

// MergeOptions overlays every field the user set onto base.
func MergeOptions(base, user domain.ResolverOptions) domain.ResolverOptions {
	merged := base
	if user.Extensions != nil {
		merged.Extensions = user.Extensions
	}
	if user.ConditionNames != nil {
		merged.ConditionNames = user.ConditionNames
	}
	if user.MainFields != nil {
		merged.MainFields = user.MainFields
	}
	if user.Alias != nil {
		merged.Alias = user.Alias
	}
	if user.Builtins != nil {
		merged.Builtins = user.Builtins
	}
	if user.ModuleType != nil {
		merged.ModuleType = user.ModuleType
	}
	if user.Symlinks != nil {
		merged.Symlinks = user.Symlinks
	}
	return merged
}
