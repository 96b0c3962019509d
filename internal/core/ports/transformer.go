package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate mockgen -source=transformer.go -destination=mocks/mock_transformer.go -package=mocks

// Transformer compiles TypeScript and JSX sources to JavaScript.
type Transformer interface {
	// Transform compiles one file. Syntax problems are reported in the result's Errors;
	// the returned error is reserved for engine failures.
	Transform(ctx context.Context, req domain.TransformRequest) (domain.TransformResult, error)
}
