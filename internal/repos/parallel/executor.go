// Package parallel runs per-repository work with bounded concurrency while preserving record order.
package parallel

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scottidler/git-tools/internal/repos/shared"
)

const (
	repositorySkippedLogMessageConstant = "repository skipped"
	logFieldRepositoryConstant          = "repository"
)

// Work produces a value for one repository record.
type Work[T any] func(executionContext context.Context, record shared.RepositoryRecord) (T, error)

// Outcome pairs a record with the value its work produced.
type Outcome[T any] struct {
	Record shared.RepositoryRecord
	Value  T
}

// Execute runs work for every record with at most limit concurrent calls and returns
// the successful outcomes in record order. A failing record is logged and skipped;
// only cancellation of executionContext fails the call.
func Execute[T any](executionContext context.Context, records []shared.RepositoryRecord, limit int, logger *zap.Logger, work Work[T]) ([]Outcome[T], error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit < 1 {
		limit = 1
	}

	values := make([]T, len(records))
	succeeded := make([]bool, len(records))

	workGroup, groupContext := errgroup.WithContext(executionContext)
	workGroup.SetLimit(limit)
	for recordIndex := range records {
		workGroup.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			value, workError := work(groupContext, records[recordIndex])
			if workError != nil {
				logger.Warn(
					repositorySkippedLogMessageConstant,
					zap.String(logFieldRepositoryConstant, records[recordIndex].DisplayName()),
					zap.Error(workError),
				)
				return nil
			}
			values[recordIndex] = value
			succeeded[recordIndex] = true
			return nil
		})
	}
	if waitError := workGroup.Wait(); waitError != nil {
		return nil, waitError
	}

	outcomes := make([]Outcome[T], 0, len(records))
	for recordIndex, record := range records {
		if !succeeded[recordIndex] {
			continue
		}
		outcomes = append(outcomes, Outcome[T]{Record: record, Value: values[recordIndex]})
	}
	return outcomes, nil
}
