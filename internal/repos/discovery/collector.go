package discovery

import (
	"context"

	"go.uber.org/zap"

	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	discoveryWarningLogMessageConstant = "repository discovery warning"
	logFieldKindConstant               = "kind"
)

// Discoverer runs one discovery pass over roots.
type Discoverer interface {
	DiscoverRepositories(executionContext context.Context, roots []string, options Options) (Result, error)
}

// Collector adapts a Discoverer with fixed options to shared.RepositoryCollector, logging warnings.
type Collector struct {
	discoverer Discoverer
	options    Options
	logger     *zap.Logger
}

// NewCollector constructs a Collector.
func NewCollector(discoverer Discoverer, options Options, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{discoverer: discoverer, options: options, logger: logger}
}

// CollectRepositories discovers records under roots and logs every lenient-mode warning at warn level.
func (collector *Collector) CollectRepositories(executionContext context.Context, roots []string) ([]shared.RepositoryRecord, error) {
	result, discoveryError := collector.discoverer.DiscoverRepositories(executionContext, roots, collector.options)
	if discoveryError != nil {
		return nil, discoveryError
	}
	for _, warning := range result.Warnings {
		collector.logger.Warn(
			discoveryWarningLogMessageConstant,
			zap.String(logFieldPathConstant, warning.Path),
			zap.String(logFieldKindConstant, warning.Kind.Error()),
			zap.Error(warning.Cause),
		)
	}
	return result.Records, nil
}
