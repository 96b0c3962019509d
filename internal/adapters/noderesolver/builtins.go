package noderesolver

import "strings"

// BuiltinPrefix marks a platform module explicitly.
const BuiltinPrefix = "node:"

var builtinModules = map[string]struct{}{
	"assert": {}, "async_hooks": {}, "buffer": {}, "child_process": {}, "cluster": {},
	"console": {}, "constants": {}, "crypto": {}, "dgram": {}, "diagnostics_channel": {},
	"dns": {}, "domain": {}, "events": {}, "fs": {}, "http": {}, "http2": {}, "https": {},
	"inspector": {}, "module": {}, "net": {}, "os": {}, "path": {}, "perf_hooks": {},
	"process": {}, "punycode": {}, "querystring": {}, "readline": {}, "repl": {},
	"stream": {}, "string_decoder": {}, "sys": {}, "timers": {}, "tls": {},
	"trace_events": {}, "tty": {}, "url": {}, "util": {}, "v8": {}, "vm": {},
	"wasi": {}, "worker_threads": {}, "zlib": {},
}

// IsBuiltin reports whether specifier names a Node.js core module,
// including subpaths such as "fs/promises".
func IsBuiltin(specifier string) bool {
	if strings.HasPrefix(specifier, BuiltinPrefix) {
		return true
	}
	name, _, _ := strings.Cut(specifier, "/")
	_, ok := builtinModules[name]
	return ok
}
