package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/cmd/kiln/commands"
	"go.trai.ch/kiln/internal/adapters/config"
	"go.trai.ch/kiln/internal/adapters/esbuild"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/adapters/metrics"
	"go.trai.ch/kiln/internal/adapters/noderesolver"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/adapters/watcher"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/refresh"
)

type harness struct {
	cli    *commands.CLI
	stdout bytes.Buffer
	stderr bytes.Buffer
	logs   bytes.Buffer
}

func newHarness(t *testing.T, args ...string) *harness {
	t.Helper()

	h := &harness{}
	log := logger.New()
	log.SetOutput(&h.logs)
	recorder := metrics.NewRecorder(nil)

	components := &app.Components{
		Logger:         log,
		LogOutput:      log,
		ConfigLoader:   config.NewLoader(log),
		Transformer:    esbuild.NewTransformer(),
		Resolvers:      noderesolver.NewFactory(),
		Minifiers:      esbuild.NewMinifierLoader(),
		Tracer:         telemetry.NewOTelTracer(telemetry.InstrumentationName),
		Metrics:        recorder,
		Builds:         recorder,
		MetricsHandler: recorder.Handler(),
		NewWatcher: func(ignore ...string) (ports.Watcher, error) {
			return watcher.NewWatcher(log, ignore...)
		},
	}

	h.cli = commands.New(components)
	h.cli.SetArgs(args)
	h.cli.SetOutput(&h.stdout, &h.stderr)
	return h
}

func (h *harness) run() error {
	return h.cli.Execute(context.Background())
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	base := map[string]string{
		"src/main.tsx": "import { App } from \"./App\";\nconsole.log(App);\n",
		"src/App.tsx":  "export function App() {\n  return <div>hello</div>;\n}\n",
		"index.html":   "<!doctype html>\n<html><head><title>app</title></head><body></body></html>\n",

		"node_modules/react/package.json":       `{"name":"react"}`,
		"node_modules/react/jsx-runtime.js":     "exports.jsx = function jsx(type) { return { type }; };\n",
		"node_modules/react/jsx-dev-runtime.js": "exports.jsxDEV = function jsxDEV(type) { return { type }; };\n",

		"node_modules/react-refresh/package.json": `{"name":"react-refresh"}`,
		"node_modules/react-refresh/runtime.js": "exports.injectIntoGlobalHook = function () {};\n" +
			"exports.register = function () {};\n" +
			"exports.createSignatureFunctionForTransform = function () { return function (t) { return t; }; };\n",
	}
	for name, content := range files {
		base[name] = content
	}

	for name, content := range base {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	t.Chdir(root)
	return root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestVersion(t *testing.T) {
	h := newHarness(t, "version")
	require.NoError(t, h.run())
	assert.Equal(t, "kiln version dev\n", h.stdout.String())
}

func TestBuild(t *testing.T) {
	root := writeProject(t, nil)

	h := newHarness(t, "build", "src/main.tsx", "--minify", "--sourcemap")
	require.NoError(t, h.run())

	code := readFile(t, filepath.Join(root, "dist", "main.js"))
	assert.NotContains(t, code, "$RefreshReg$")
	assert.Contains(t, code, "//# sourceMappingURL=main.js.map")
	assert.FileExists(t, filepath.Join(root, "dist", "main.js.map"))

	assert.Contains(t, h.stdout.String(), "built 2 files")
	assert.Contains(t, h.stdout.String(), "main.js.map")
}

func TestBuild_DevWithHTML(t *testing.T) {
	root := writeProject(t, nil)

	h := newHarness(t, "build", "src/main.tsx", "--dev", "--html", "index.html", "--outdir", "out")
	require.NoError(t, h.run())

	code := readFile(t, filepath.Join(root, "out", "main.js"))
	assert.Contains(t, code, `$RefreshReg$(App, "App")`)
	assert.FileExists(t, filepath.Join(root, "out", "main.js.map"), "dev builds emit source maps by default")

	assert.Contains(t, code, "function $RefreshReg$(")
	assert.NotContains(t, code, "window.$RefreshReg$ =")

	// The page imports the runtime the build emitted, not the served virtual module.
	page := readFile(t, filepath.Join(root, "out", "index.html"))
	assert.Contains(t, page, `import { injectIntoGlobalHook } from "./react-refresh.js";`)
	assert.NotContains(t, page, refresh.ModuleID)
	assert.FileExists(t, filepath.Join(root, "out", "react-refresh.js"))
	assert.Contains(t, h.stdout.String(), "index.html")
	assert.Contains(t, h.stdout.String(), "react-refresh.js")
}

func TestBuild_DevWithoutHTML(t *testing.T) {
	root := writeProject(t, nil)

	h := newHarness(t, "build", "src/main.tsx", "--dev", "--outdir", "out")
	require.NoError(t, h.run())

	code := readFile(t, filepath.Join(root, "out", "main.js"))
	assert.Contains(t, code, "function $RefreshReg$(")
	assert.NoFileExists(t, filepath.Join(root, "out", "react-refresh.js"))
}

func TestBuild_ConfigFile(t *testing.T) {
	root := writeProject(t, map[string]string{
		"kiln.yaml": "minify: true\nsourcemap: false\n",
	})

	h := newHarness(t, "build", "src/main.tsx")
	require.NoError(t, h.run())

	assert.NoFileExists(t, filepath.Join(root, "dist", "main.js.map"))
	code := readFile(t, filepath.Join(root, "dist", "main.js"))
	assert.NotContains(t, code, "\n  ")
}

func TestBuild_Errors(t *testing.T) {
	t.Run("no entry points", func(t *testing.T) {
		writeProject(t, nil)
		h := newHarness(t, "build")
		require.ErrorIs(t, h.run(), domain.ErrNoEntryPoints)
	})

	t.Run("syntax error", func(t *testing.T) {
		writeProject(t, map[string]string{"src/App.tsx": "export function App( {\n"})
		h := newHarness(t, "build", "src/main.tsx")
		err := h.run()
		require.ErrorIs(t, err, domain.ErrBuildFailed)
		assert.Contains(t, err.Error(), "App.tsx")
	})

	t.Run("invalid config", func(t *testing.T) {
		writeProject(t, map[string]string{"kiln.yaml": "minify: [\n"})
		h := newHarness(t, "build", "src/main.tsx")
		require.ErrorIs(t, h.run(), domain.ErrConfigParse)
	})
}

func TestTransform(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "production",
			args:    []string{"transform", "src/App.tsx"},
			want:    []string{`from "react/jsx-runtime"`},
			notWant: []string{"$RefreshReg$", "sourceMappingURL"},
		},
		{
			name: "development",
			args: []string{"transform", "src/App.tsx", "--dev"},
			want: []string{`$RefreshReg$(App, "App")`, refresh.ModuleID, "//# sourceMappingURL=data:application/json;base64,"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeProject(t, nil)
			h := newHarness(t, tt.args...)
			require.NoError(t, h.run())

			for _, want := range tt.want {
				assert.Contains(t, h.stdout.String(), want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, h.stdout.String(), notWant)
			}
		})
	}
}

func TestTransform_NotHandled(t *testing.T) {
	writeProject(t, map[string]string{"styles.css": "body { color: red; }\n"})

	h := newHarness(t, "transform", "styles.css")
	require.NoError(t, h.run())
	assert.Equal(t, "body { color: red; }\n", h.stdout.String())
	assert.Contains(t, h.logs.String(), "not handled")
}

func TestTransform_Error(t *testing.T) {
	writeProject(t, map[string]string{"src/App.tsx": "export function App( {\n"})

	h := newHarness(t, "transform", "src/App.tsx")
	err := h.run()
	require.ErrorIs(t, err, domain.ErrTransformFailed)

	var transformErr *domain.TransformError
	require.ErrorAs(t, err, &transformErr)
	assert.NotEmpty(t, transformErr.Messages)
}

func TestVerbose_LogsHookSpans(t *testing.T) {
	writeProject(t, nil)

	h := newHarness(t, "transform", "src/App.tsx", "--verbose")
	require.NoError(t, h.run())
	assert.Contains(t, h.logs.String(), "kiln.transform")
}
