package ports

//go:generate mockgen -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks

// Reporter is the host's error channel for bundle-level failures.
type Reporter interface {
	// Report hands err to the host. A non-nil return means the host aborts the build.
	Report(err error) error
}
