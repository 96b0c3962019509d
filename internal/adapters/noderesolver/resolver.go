// Package noderesolver implements Node.js-style module resolution.
package noderesolver

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultPackageCacheSize bounds the number of cached package.json files.
const DefaultPackageCacheSize = 512

const nodeModules = "node_modules"

var defaultMainFields = []string{"main"}

// Factory implements ports.ResolverFactory.
type Factory struct {
	CacheSize int
}

var _ ports.ResolverFactory = (*Factory)(nil)

// NewFactory creates a Factory with the default package.json cache size.
func NewFactory() *Factory {
	return &Factory{CacheSize: DefaultPackageCacheSize}
}

// NewResolver validates opts and builds a Resolver.
func (f *Factory) NewResolver(opts domain.ResolverOptions) (ports.Resolver, error) {
	return New(opts, f.CacheSize)
}

// Resolver resolves specifiers the way Node.js does, with user aliases and
// package exports conditions.
type Resolver struct {
	extensions []string
	conditions map[string]bool
	mainFields []string
	aliases    []alias
	builtins   bool
	moduleType bool
	symlinks   bool
	packages   *packageCache
}

var _ ports.Resolver = (*Resolver)(nil)

type alias struct {
	from string
	to   string
}

// New creates a Resolver. Unset booleans default to on.
func New(opts domain.ResolverOptions, cacheSize int) (*Resolver, error) {
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidOption, "extensions must start with a dot"), "extension", ext)
		}
	}

	if cacheSize <= 0 {
		cacheSize = DefaultPackageCacheSize
	}
	packages, err := newPackageCache(cacheSize)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		extensions: opts.Extensions,
		conditions: make(map[string]bool, len(opts.ConditionNames)),
		mainFields: opts.MainFields,
		builtins:   boolOr(opts.Builtins, true),
		moduleType: boolOr(opts.ModuleType, true),
		symlinks:   boolOr(opts.Symlinks, true),
		packages:   packages,
	}
	if len(r.mainFields) == 0 {
		r.mainFields = defaultMainFields
	}
	for _, c := range opts.ConditionNames {
		r.conditions[c] = true
	}

	for from, to := range opts.Alias {
		if from == "" {
			return nil, zerr.Wrap(domain.ErrInvalidOption, "alias keys must not be empty")
		}
		r.aliases = append(r.aliases, alias{from: from, to: to})
	}
	// Longest key first so "@/components" beats "@".
	sort.Slice(r.aliases, func(i, j int) bool {
		if len(r.aliases[i].from) != len(r.aliases[j].from) {
			return len(r.aliases[i].from) > len(r.aliases[j].from)
		}
		return r.aliases[i].from < r.aliases[j].from
	})

	return r, nil
}

// Resolve looks up specifier relative to dir.
func (r *Resolver) Resolve(dir, specifier string) (domain.ResolvedModule, error) {
	spec := r.applyAlias(specifier)

	if IsBuiltin(spec) {
		if r.builtins {
			return domain.ResolvedModule{}, &domain.BuiltinModuleError{Specifier: specifier}
		}
		if strings.HasPrefix(spec, BuiltinPrefix) {
			return domain.ResolvedModule{}, notFound(specifier, dir)
		}
	}

	var (
		file string
		err  error
	)
	if isPath(spec) {
		target := spec
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, filepath.FromSlash(spec))
		}
		file, err = r.resolvePath(target)
	} else {
		file, err = r.resolvePackage(dir, spec)
	}
	if err != nil {
		return domain.ResolvedModule{}, err
	}
	if file == "" {
		return domain.ResolvedModule{}, notFound(specifier, dir)
	}

	if r.symlinks {
		if real, err := filepath.EvalSymlinks(file); err == nil {
			file = real
		}
	}

	mod := domain.ResolvedModule{Path: file}
	if r.moduleType {
		mod.ModuleType, err = r.typeOf(file)
		if err != nil {
			return domain.ResolvedModule{}, err
		}
	}
	return mod, nil
}

func (r *Resolver) applyAlias(spec string) string {
	for _, a := range r.aliases {
		if spec == a.from {
			return a.to
		}
		if rest, ok := strings.CutPrefix(spec, a.from+"/"); ok {
			return strings.TrimSuffix(a.to, "/") + "/" + rest
		}
	}
	return spec
}

func isPath(spec string) bool {
	return spec == "." || spec == ".." ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		filepath.IsAbs(spec) || strings.HasPrefix(spec, "/")
}

// resolvePath tries target as a file, then with each extension, then as a directory.
func (r *Resolver) resolvePath(target string) (string, error) {
	if file := r.resolveFile(target); file != "" {
		return file, nil
	}
	return r.resolveDirectory(target)
}

func (r *Resolver) resolveFile(target string) string {
	if isFile(target) {
		return target
	}
	for _, ext := range r.extensions {
		if isFile(target + ext) {
			return target + ext
		}
	}
	return ""
}

func (r *Resolver) resolveDirectory(dir string) (string, error) {
	if !isDir(dir) {
		return "", nil
	}

	pkg, err := r.packages.load(dir)
	if err != nil {
		return "", err
	}
	if pkg != nil {
		for _, field := range r.mainFields {
			main, ok := pkg.stringField(field)
			if !ok {
				continue
			}
			target := filepath.Join(dir, filepath.FromSlash(main))
			if file := r.resolveFile(target); file != "" {
				return file, nil
			}
			if file := r.resolveIndex(target); file != "" {
				return file, nil
			}
		}
	}

	return r.resolveIndex(dir), nil
}

func (r *Resolver) resolveIndex(dir string) string {
	for _, ext := range r.extensions {
		candidate := filepath.Join(dir, "index"+ext)
		if isFile(candidate) {
			return candidate
		}
	}
	return ""
}

// resolvePackage walks up node_modules directories from dir.
func (r *Resolver) resolvePackage(dir, spec string) (string, error) {
	name, subpath := splitPackage(spec)
	if name == "" {
		return "", nil
	}

	for current := dir; ; {
		if filepath.Base(current) != nodeModules {
			pkgDir := filepath.Join(current, nodeModules, filepath.FromSlash(name))
			if isDir(pkgDir) {
				return r.resolveInPackage(pkgDir, spec, subpath)
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}

func (r *Resolver) resolveInPackage(pkgDir, spec, subpath string) (string, error) {
	pkg, err := r.packages.load(pkgDir)
	if err != nil {
		return "", err
	}

	if pkg != nil && pkg.hasExports {
		target, ok := matchExports(pkg.exports, "."+subpath, r.conditions)
		if !ok {
			return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrPackageExportsMismatch, "no exported subpath"), "specifier", spec), "subpath", "."+subpath)
		}
		file := filepath.Join(pkgDir, filepath.FromSlash(path.Clean(target)))
		if !isFile(file) {
			return "", nil
		}
		return file, nil
	}

	if subpath == "" {
		return r.resolveDirectory(pkgDir)
	}
	return r.resolvePath(filepath.Join(pkgDir, filepath.FromSlash(strings.TrimPrefix(subpath, "/"))))
}

// splitPackage splits "@scope/name/sub/path" into "@scope/name" and "/sub/path".
func splitPackage(spec string) (name, subpath string) {
	parts := strings.SplitN(spec, "/", 3)
	if strings.HasPrefix(spec, "@") {
		if len(parts) < 2 || parts[1] == "" {
			return "", ""
		}
		name = parts[0] + "/" + parts[1]
		if len(parts) == 3 {
			subpath = "/" + parts[2]
		}
		return name, subpath
	}

	name, rest, found := strings.Cut(spec, "/")
	if found {
		subpath = "/" + rest
	}
	return name, subpath
}

func (r *Resolver) typeOf(file string) (domain.ModuleFormat, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".mjs", ".mts":
		return domain.FormatModule, nil
	case ".cjs", ".cts":
		return domain.FormatCommonJS, nil
	case ".json":
		return domain.FormatJSON, nil
	}

	pkg, err := r.packages.nearest(filepath.Dir(file))
	if err != nil || pkg == nil {
		return domain.FormatUnknown, err
	}
	if pkg.typ == "module" {
		return domain.FormatModule, nil
	}
	return domain.FormatCommonJS, nil
}

func notFound(specifier, dir string) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "cannot resolve module"), "specifier", specifier), "dir", dir)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
