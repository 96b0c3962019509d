package ports

import "go.trai.ch/kiln/internal/core/domain"

//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks

// ConfigLoader reads user options for the project rooted at cwd.
type ConfigLoader interface {
	Load(cwd string) (domain.Options, error)
}
