// Package refresh implements the development fast-refresh protocol: the virtual runtime
// module, the per-module footer and the page preamble.
package refresh

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ModuleID is the reserved id of the virtual refresh runtime module.
const ModuleID = "/@react-refresh"

// RegistrationMarker appears in transformer output that registered at least one component.
const RegistrationMarker = "$RefreshReg$("

// Runtime is the source served for ModuleID.
//
//go:embed runtime.js
var Runtime string

// PreambleFlag is set on window by the preamble. Hot-replaceable modules refuse to
// run without it.
const PreambleFlag = "__kilnRefreshPreamble"

// Preamble installs the global hook once per page and stubs the global registration
// hooks for code that was not instrumented by kiln.
const Preamble = `import { injectIntoGlobalHook } from "` + ModuleID + `";
injectIntoGlobalHook(window);
window.$RefreshReg$ = () => {};
window.$RefreshSig$ = () => (type) => type;
window.` + PreambleFlag + ` = true;
`

// The hooks are function declarations so they are hoisted above the registration
// calls the transformer emits earlier in the module. %[1]s is the quoted module id
// and %[2]s the quoted registration key prefix.
const footerTemplate = `
import * as __kilnRefresh from "` + ModuleID + `";
function $RefreshReg$(type, id) {
  __kilnRefresh.register(type, %[2]s + id);
}
function $RefreshSig$() {
  return __kilnRefresh.createSignatureFunctionForTransform();
}
const __kilnInWorker = typeof WorkerGlobalScope !== "undefined" && self instanceof WorkerGlobalScope;
if (import.meta.hot && !__kilnInWorker) {
  if (!window.` + PreambleFlag + `) {
    throw new Error("kiln: fast refresh preamble is missing, serve the HTML entry through kiln");
  }
  __kilnRefresh.__hmr_import(import.meta.url).then((currentExports) => {
    __kilnRefresh.registerExportsForReactRefresh(%[1]s, currentExports);
    import.meta.hot.accept((nextExports) => {
      if (!nextExports) return;
      const invalidateMessage = __kilnRefresh.validateRefreshBoundaryAndEnqueueUpdate(%[1]s, currentExports, nextExports);
      if (invalidateMessage) import.meta.hot.invalidate(invalidateMessage);
    });
  });
}
`

var jsxLike = regexp.MustCompile(`\.[jt]sx$`)

// Footer returns the instrumentation appended to a hot-replaceable module with the given id.
func Footer(id string) string {
	return fmt.Sprintf(footerTemplate, quote(id), quote(id+" "))
}

// Applies reports whether id names a JSX or TSX source that can carry components.
func Applies(id string) bool {
	if i := strings.IndexByte(id, '?'); i >= 0 {
		id = id[:i]
	}
	return jsxLike.MatchString(id)
}

// RelocatePreamble points the preamble's runtime import in document at url. Static
// builds use it because ModuleID only exists on a serving host.
func RelocatePreamble(document, url string) string {
	return strings.Replace(document, `from "`+ModuleID+`"`, `from `+quote(url), 1)
}

// HasRegistrations reports whether transformed code registered any component.
func HasRegistrations(code string) bool {
	return strings.Contains(code, RegistrationMarker)
}

func quote(s string) string {
	data, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(data)
}
