package config

import (
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

func toOptions(k *Kilnfile) (domain.Options, error) {
	opts := domain.Options{
		ResolveNodeModules: k.ResolveNodeModules,
		Sourcemap:          k.Sourcemap,
		ReactRefresh:       k.ReactRefresh,
		CacheSize:          k.CacheSize,
	}

	if k.CacheSize < 0 {
		return domain.Options{}, zerr.With(zerr.Wrap(domain.ErrInvalidOption, "cacheSize must not be negative"), "cacheSize", k.CacheSize)
	}

	var err error
	if opts.Include, err = toPatterns(k.Include); err != nil {
		return domain.Options{}, zerr.With(err, "field", "include")
	}
	if opts.Exclude, err = toPatterns(k.Exclude); err != nil {
		return domain.Options{}, zerr.With(err, "field", "exclude")
	}

	switch domain.Enforce(k.Enforce) {
	case domain.EnforceNone, domain.EnforcePre, domain.EnforcePost:
		opts.Enforce = domain.Enforce(k.Enforce)
	default:
		return domain.Options{}, zerr.With(zerr.Wrap(domain.ErrInvalidOption, "enforce must be pre or post"), "enforce", k.Enforce)
	}

	if k.Transform != nil {
		toggle, err := toTransform(k.Transform)
		if err != nil {
			return domain.Options{}, err
		}
		opts.Transform = &toggle
	}

	if k.Resolve != nil {
		toggle := convertToggle(k.Resolve, toResolver)
		opts.Resolve = &toggle
	}

	if k.Minify != nil {
		toggle := convertToggle(k.Minify, toMinify)
		opts.Minify = &toggle
	}

	return opts, nil
}

// toPatterns keeps the nil/empty distinction: an absent list means the default,
// an empty list means no patterns at all. Empty strings would match every id and
// are dropped.
func toPatterns(dtos []PatternDTO) ([]domain.Pattern, error) {
	if dtos == nil {
		return nil, nil
	}

	patterns := make([]domain.Pattern, 0, len(dtos))
	for _, dto := range dtos {
		if !dto.IsRegex {
			if dto.Substring == "" {
				continue
			}
			patterns = append(patterns, domain.Substring(dto.Substring))
			continue
		}
		p, err := domain.Regex(dto.Regex)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

func convertToggle[D, T any](dto *ToggleDTO[D], convert func(D) T) domain.Toggle[T] {
	switch {
	case !dto.Enabled:
		return domain.Off[T]()
	case dto.Options == nil:
		return domain.On[T]()
	default:
		return domain.With(convert(*dto.Options))
	}
}

func toTransform(dto *ToggleDTO[TransformDTO]) (domain.Toggle[domain.TransformOptions], error) {
	if dto.Options != nil {
		switch domain.JSXRuntime(dto.Options.JSX.Runtime) {
		case "", domain.JSXAutomatic, domain.JSXClassic:
		default:
			return domain.Toggle[domain.TransformOptions]{}, zerr.With(
				zerr.Wrap(domain.ErrInvalidOption, "jsx runtime must be automatic or classic"),
				"runtime", dto.Options.JSX.Runtime,
			)
		}
	}

	return convertToggle(dto, func(d TransformDTO) domain.TransformOptions {
		return domain.TransformOptions{
			JSX: domain.JSXOptions{
				Runtime:      domain.JSXRuntime(d.JSX.Runtime),
				ImportSource: d.JSX.ImportSource,
				Factory:      d.JSX.Factory,
				Fragment:     d.JSX.Fragment,
			},
			Target: d.Target,
			Define: d.Define,
		}
	}), nil
}

func toResolver(d ResolverDTO) domain.ResolverOptions {
	return domain.ResolverOptions{
		Extensions:     d.Extensions,
		ConditionNames: d.ConditionNames,
		MainFields:     d.MainFields,
		Alias:          d.Alias,
		Builtins:       d.Builtins,
		ModuleType:     d.ModuleType,
		Symlinks:       d.Symlinks,
	}
}

func toMinify(d MinifyDTO) domain.MinifyOptions {
	return domain.MinifyOptions{
		Whitespace:    d.Whitespace,
		Identifiers:   d.Identifiers,
		Syntax:        d.Syntax,
		KeepNames:     d.KeepNames,
		LegalComments: d.LegalComments,
		Target:        d.Target,
		Drop:          d.Drop,
	}
}
