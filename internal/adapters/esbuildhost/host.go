// Package esbuildhost runs the kiln plugin inside an esbuild build.
package esbuildhost

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/refresh"
	"go.trai.ch/zerr"
)

// VirtualNamespace holds modules that do not exist on disk.
const VirtualNamespace = "kiln-virtual"

// SourceFilter selects the files handed to the Transform hook.
const SourceFilter = `\.[cm]?[jt]sx?$`

const sourceMappingPrefix = "//# sourceMappingURL="

// Config describes the build the plugin runs in.
type Config struct {
	Command domain.Command
	Root    string
	// FailFast aborts bundle generation at the first chunk error.
	FailFast bool
}

// New adapts plugin to an esbuild plugin. ctx is passed to every hook.
// Minified chunks are written back to BuildResult.OutputFiles, so the build
// must run with Write disabled and the caller writes the files.
func New(ctx context.Context, plugin *app.Plugin, cfg Config) api.Plugin {
	h := &host{ctx: ctx, plugin: plugin, cfg: cfg}
	return api.Plugin{
		Name:  plugin.Name(),
		Setup: h.setup,
	}
}

type host struct {
	ctx    context.Context
	plugin *app.Plugin
	cfg    Config
}

func (h *host) setup(build api.PluginBuild) {
	hostCfg := domain.HostConfig{Command: h.cfg.Command, Root: h.cfg.Root}

	override := h.plugin.ConfigFinalize(hostCfg)
	if override.OptimizeDepsJSX == domain.JSXAutomatic && build.InitialOptions != nil {
		build.InitialOptions.JSX = api.JSXAutomatic
	}

	if err := h.plugin.ConfigResolved(h.ctx, hostCfg); err != nil && !errors.Is(err, domain.ErrAlreadyConfigured) {
		build.OnStart(func() (api.OnStartResult, error) {
			return api.OnStartResult{Errors: []api.Message{{Text: err.Error()}}}, nil
		})
		return
	}

	build.OnResolve(api.OnResolveOptions{Filter: ".*"}, h.onResolve)
	build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: VirtualNamespace}, h.onLoadVirtual)
	build.OnLoad(api.OnLoadOptions{Filter: SourceFilter, Namespace: "file"}, h.onLoadFile)

	outdir := ""
	if build.InitialOptions != nil {
		outdir = build.InitialOptions.Outdir
	}
	build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
		return h.onEnd(result, outdir)
	})
}

func (h *host) onResolve(args api.OnResolveArgs) (api.OnResolveResult, error) {
	importer := args.Importer
	if args.Namespace != "file" && args.Namespace != "" {
		importer = ""
	}

	res, err := h.plugin.ResolveID(h.ctx, importer, args.Path)
	if err != nil {
		return api.OnResolveResult{}, err
	}

	switch {
	case res == nil:
		return api.OnResolveResult{}, nil
	case res.ID == refresh.ModuleID:
		return api.OnResolveResult{Path: refresh.ModuleID, Namespace: VirtualNamespace}, nil
	case res.External:
		return api.OnResolveResult{Path: res.ID, External: true, SideEffects: api.SideEffectsFalse}, nil
	default:
		return api.OnResolveResult{Path: res.ID}, nil
	}
}

func (h *host) onLoadVirtual(args api.OnLoadArgs) (api.OnLoadResult, error) {
	res, ok := h.plugin.Load(h.ctx, args.Path)
	if !ok {
		return api.OnLoadResult{}, nil
	}

	code := res.Code
	return api.OnLoadResult{
		Contents:   &code,
		Loader:     api.LoaderJS,
		ResolveDir: h.cfg.Root,
	}, nil
}

func (h *host) onLoadFile(args api.OnLoadArgs) (api.OnLoadResult, error) {
	data, err := os.ReadFile(args.Path)
	if err != nil {
		return api.OnLoadResult{}, zerr.With(zerr.Wrap(err, "failed to read source"), "path", args.Path)
	}

	out, err := h.plugin.Transform(h.ctx, args.Path, string(data), domain.HintNone)
	if err != nil {
		return api.OnLoadResult{Errors: messagesFor(args.Path, err)}, nil
	}
	if out == nil {
		return api.OnLoadResult{}, nil
	}

	code := out.Code
	if out.Map != nil {
		code = strings.TrimRight(code, "\n") + "\n" + sourceMappingPrefix + out.Map.ToURL() + "\n"
	}

	return api.OnLoadResult{
		Contents:   &code,
		Loader:     api.LoaderJS,
		ResolveDir: filepath.Dir(args.Path),
	}, nil
}

func messagesFor(path string, err error) []api.Message {
	var te *domain.TransformError
	if errors.As(err, &te) {
		msgs := make([]api.Message, 0, len(te.Messages))
		for _, m := range te.Messages {
			msgs = append(msgs, api.Message{Text: m, Location: &api.Location{File: path}})
		}
		return msgs
	}
	return []api.Message{{Text: err.Error(), Location: &api.Location{File: path}}}
}

var jsChunk = regexp.MustCompile(`\.[cm]?js$`)

func (h *host) onEnd(result *api.BuildResult, outdir string) (api.OnEndResult, error) {
	if len(result.Errors) > 0 {
		return api.OnEndResult{}, nil
	}

	bundle, index := collectBundle(result.OutputFiles, outdir)

	reporter := &reporter{failFast: h.cfg.FailFast}
	if err := h.plugin.GenerateBundle(h.ctx, bundle, reporter); err != nil && !reporter.aborted {
		reporter.messages = append(reporter.messages, api.Message{Text: err.Error()})
	}
	if len(reporter.messages) > 0 {
		return api.OnEndResult{Errors: reporter.messages}, nil
	}

	if err := writeBack(result, bundle, index); err != nil {
		return api.OnEndResult{}, err
	}
	return api.OnEndResult{}, nil
}

// outputRef locates a chunk's files in BuildResult.OutputFiles.
type outputRef struct {
	code int
	// sourceMap is -1 when the chunk has no map file.
	sourceMap int
}

func collectBundle(files []api.OutputFile, outdir string) (domain.Bundle, map[string]outputRef) {
	byPath := make(map[string]int, len(files))
	for i, f := range files {
		byPath[f.Path] = i
	}

	bundle := domain.Bundle{}
	index := map[string]outputRef{}

	for i, f := range files {
		name := outputName(f.Path, outdir)

		if strings.HasSuffix(f.Path, ".map") {
			if _, ok := byPath[strings.TrimSuffix(f.Path, ".map")]; ok {
				continue
			}
		}

		if !jsChunk.MatchString(f.Path) {
			bundle[name] = &domain.Asset{FileName: name, Source: f.Contents}
			continue
		}

		chunk := &domain.Chunk{FileName: name, Code: stripSourceMappingURL(string(f.Contents))}
		ref := outputRef{code: i, sourceMap: -1}
		if j, ok := byPath[f.Path+".map"]; ok {
			if sm, err := domain.ParseSourceMap(files[j].Contents); err == nil {
				chunk.Map = sm
				ref.sourceMap = j
			}
		}
		bundle[name] = chunk
		index[name] = ref
	}

	return bundle, index
}

func writeBack(result *api.BuildResult, bundle domain.Bundle, index map[string]outputRef) error {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		chunk, ok := bundle[name].(*domain.Chunk)
		if !ok {
			continue
		}
		ref := index[name]
		code := chunk.Code

		if ref.sourceMap >= 0 && chunk.Map != nil {
			data, err := chunk.Map.JSON()
			if err != nil {
				return err
			}
			result.OutputFiles[ref.sourceMap].Contents = data
			code = strings.TrimRight(code, "\n") + "\n" + sourceMappingPrefix + filepath.Base(result.OutputFiles[ref.sourceMap].Path) + "\n"
		}
		result.OutputFiles[ref.code].Contents = []byte(code)
	}
	return nil
}

func outputName(path, outdir string) string {
	if outdir != "" {
		if rel, err := filepath.Rel(outdir, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(path)
}

// stripSourceMappingURL drops the trailing linked-map comment; it is re-added on write.
func stripSourceMappingURL(code string) string {
	trimmed := strings.TrimRight(code, "\n")
	i := strings.LastIndex(trimmed, "\n"+sourceMappingPrefix)
	if i < 0 || strings.Contains(trimmed[i+1:], "\n") {
		return code
	}
	return trimmed[:i+1]
}
