package esbuild

import (
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

var targets = map[string]api.Target{
	"":       api.ESNext,
	"esnext": api.ESNext,
	"es5":    api.ES5,
	"es6":    api.ES2015,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"es2023": api.ES2023,
	"es2024": api.ES2024,
}

func parseTarget(target string) (api.Target, error) {
	t, ok := targets[strings.ToLower(target)]
	if !ok {
		return api.DefaultTarget, zerr.With(zerr.Wrap(domain.ErrInvalidOption, "unsupported target"), "target", target)
	}
	return t, nil
}

var loaders = map[string]api.Loader{
	".js":   api.LoaderJS,
	".mjs":  api.LoaderJS,
	".cjs":  api.LoaderJS,
	".jsx":  api.LoaderJSX,
	".ts":   api.LoaderTS,
	".mts":  api.LoaderTS,
	".cts":  api.LoaderTS,
	".tsx":  api.LoaderTSX,
	".json": api.LoaderJSON,
}

// loaderFor picks the loader from the id's extension, ignoring any query suffix.
func loaderFor(id string) api.Loader {
	if i := strings.IndexByte(id, '?'); i >= 0 {
		id = id[:i]
	}
	if l, ok := loaders[strings.ToLower(path.Ext(id))]; ok {
		return l
	}
	return api.LoaderJS
}

func formatFor(d domain.Dialect) api.Format {
	switch d {
	case domain.DialectModule:
		return api.FormatESModule
	case domain.DialectScript:
		return api.FormatCommonJS
	default:
		return api.FormatDefault
	}
}

func parseLegalComments(s string) (api.LegalComments, error) {
	switch strings.ToLower(s) {
	case "":
		return api.LegalCommentsDefault, nil
	case "none":
		return api.LegalCommentsNone, nil
	case "inline":
		return api.LegalCommentsInline, nil
	case "eof":
		return api.LegalCommentsEndOfFile, nil
	case "linked":
		return api.LegalCommentsLinked, nil
	case "external":
		return api.LegalCommentsExternal, nil
	default:
		return api.LegalCommentsDefault, zerr.With(zerr.Wrap(domain.ErrInvalidOption, "unsupported legal comments mode"), "legalComments", s)
	}
}

func parseDrop(items []string) (api.Drop, error) {
	var drop api.Drop
	for _, item := range items {
		switch strings.ToLower(item) {
		case "console":
			drop |= api.DropConsole
		case "debugger":
			drop |= api.DropDebugger
		default:
			return 0, zerr.With(zerr.Wrap(domain.ErrInvalidOption, "unsupported drop target"), "drop", item)
		}
	}
	return drop, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
