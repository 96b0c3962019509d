package esbuildhost

import (
	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/kiln/internal/core/ports"
)

// reporter collects chunk errors as esbuild messages.
type reporter struct {
	failFast bool
	aborted  bool
	messages []api.Message
}

var _ ports.Reporter = (*reporter)(nil)

// Report records err. With failFast set, the first error stops bundle generation.
func (r *reporter) Report(err error) error {
	r.messages = append(r.messages, api.Message{Text: err.Error()})
	if r.failFast {
		r.aborted = true
		return err
	}
	return nil
}
