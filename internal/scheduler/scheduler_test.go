package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/pkg/logger"
)

type fakeTenantLister struct {
	gymIDs []string
	err    error
}

func (f *fakeTenantLister) ListActive(ctx context.Context) ([]string, error) {
	return f.gymIDs, f.err
}

func TestForEachTenantRunsJobForEveryActiveGym(t *testing.T) {
	s := &Scheduler{
		tenants: &fakeTenantLister{gymIDs: []string{"gym-1", "gym-2", "gym-3"}},
		logger:  logger.New("test", "test"),
	}

	var visited []string
	s.forEachTenant("test_job", func(ctx context.Context, gymID string) error {
		visited = append(visited, gymID)
		return nil
	})

	require.Equal(t, []string{"gym-1", "gym-2", "gym-3"}, visited)
}

func TestForEachTenantContinuesPastAPerTenantFailure(t *testing.T) {
	s := &Scheduler{
		tenants: &fakeTenantLister{gymIDs: []string{"gym-1", "gym-2"}},
		logger:  logger.New("test", "test"),
	}

	var visited []string
	s.forEachTenant("test_job", func(ctx context.Context, gymID string) error {
		visited = append(visited, gymID)
		if gymID == "gym-1" {
			return errors.New("boom")
		}
		return nil
	})

	require.Equal(t, []string{"gym-1", "gym-2"}, visited)
}
