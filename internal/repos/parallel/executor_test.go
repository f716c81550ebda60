package parallel_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/scottidler/git-tools/internal/repos/parallel"
	"github.com/scottidler/git-tools/internal/repos/shared"
)

func TestExecutePreservesRecordOrderAndSkipsFailures(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zap.WarnLevel)
	records := []shared.RepositoryRecord{
		{Path: "/src/a", Slug: "org/a"},
		{Path: "/src/b"},
		{Path: "/src/c", Slug: "org/c"},
		{Path: "/src/d", Slug: "org/d"},
	}

	outcomes, executionError := parallel.Execute(context.Background(), records, 3, zap.New(observerCore), func(executionContext context.Context, record shared.RepositoryRecord) (string, error) {
		if record.Path == "/src/b" {
			return "", errors.New("git failed")
		}
		if record.Path == "/src/a" {
			time.Sleep(20 * time.Millisecond)
		}
		return record.Path + "!", nil
	})
	require.NoError(testInstance, executionError)

	values := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		values = append(values, outcome.Value)
	}
	require.Equal(testInstance, []string{"/src/a!", "/src/c!", "/src/d!"}, values)
	require.Equal(testInstance, "org/a", outcomes[0].Record.Slug)

	require.Equal(testInstance, 1, observedLogs.Len())
	require.Equal(testInstance, "/src/b", observedLogs.All()[0].ContextMap()["repository"])
}

func TestExecuteBoundsConcurrency(testInstance *testing.T) {
	records := make([]shared.RepositoryRecord, 12)
	var active int32
	var peak int32

	_, executionError := parallel.Execute(context.Background(), records, 2, nil, func(executionContext context.Context, record shared.RepositoryRecord) (int, error) {
		current := atomic.AddInt32(&active, 1)
		for {
			observed := atomic.LoadInt32(&peak)
			if current <= observed || atomic.CompareAndSwapInt32(&peak, observed, current) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return 0, nil
	})
	require.NoError(testInstance, executionError)
	require.LessOrEqual(testInstance, atomic.LoadInt32(&peak), int32(2))
}

func TestExecuteReturnsCancellation(testInstance *testing.T) {
	executionContext, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, executionError := parallel.Execute(executionContext, []shared.RepositoryRecord{{Path: "/src/a"}}, 1, nil, func(context.Context, shared.RepositoryRecord) (int, error) {
		return 1, nil
	})
	require.ErrorIs(testInstance, executionError, context.Canceled)
	require.Nil(testInstance, outcomes)
}
