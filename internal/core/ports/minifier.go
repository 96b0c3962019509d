package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate mockgen -source=minifier.go -destination=mocks/mock_minifier.go -package=mocks

// Minifier compresses generated chunks.
type Minifier interface {
	Minify(ctx context.Context, req domain.MinifyRequest) (domain.MinifyResult, error)
}

// MinifierLoader constructs the minifier engine on first use.
type MinifierLoader interface {
	Load(ctx context.Context) (Minifier, error)
}
