package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/zerr"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantExit   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "version",
			args:       []string{"version"},
			wantExit:   0,
			wantStdout: "kiln version dev",
		},
		{
			name:       "build without entries",
			args:       []string{"build"},
			wantExit:   1,
			wantStderr: "no entry points specified",
		},
		{
			name:       "unknown command",
			args:       []string{"serve"},
			wantExit:   1,
			wantStderr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())

			var stdout, stderr bytes.Buffer
			exit := run(context.Background(), tt.args, &stdout, &stderr, provide)

			assert.Equal(t, tt.wantExit, exit)
			assert.Contains(t, stdout.String(), tt.wantStdout)
			assert.Contains(t, stderr.String(), tt.wantStderr)
		})
	}
}

func TestRun_ProviderError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	failing := func(context.Context) (*app.Components, error) {
		return nil, zerr.New("graph failed")
	}

	exit := run(context.Background(), []string{"version"}, &stdout, &stderr, failing)

	assert.Equal(t, 1, exit)
	assert.Empty(t, stdout.String())
	assert.Equal(t, "Error: graph failed\n", stderr.String())
}
