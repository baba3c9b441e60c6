package workflows_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/geokit/internal/core/codec"
	"github.com/samirrijal/geokit/internal/core/domain"
	"github.com/samirrijal/geokit/internal/core/platform"
	"github.com/samirrijal/geokit/internal/core/usecases"
	"github.com/samirrijal/geokit/internal/workflows"
)

// memRepo is an in-memory FeatureRepository. Inserts of features named in failNames fail.
type memRepo struct {
	mu        sync.Mutex
	next      int
	features  map[string]*domain.Feature
	failNames map[string]bool
	inserts   int
}

func newMemRepo(failNames ...string) *memRepo {
	r := &memRepo{features: map[string]*domain.Feature{}, failNames: map[string]bool{}}
	for _, n := range failNames {
		r.failNames[n] = true
	}
	return r
}

func (r *memRepo) Insert(ctx context.Context, f *domain.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.failNames[f.Name] {
		return errors.New("connection reset")
	}
	r.next++
	f.ID = fmt.Sprintf("f-%d", r.next)
	r.features[f.ID] = f
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*domain.Feature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.features[id]; ok {
		return f, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.features[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.features, id)
	return nil
}

func (r *memRepo) List(ctx context.Context, offset, limit int) ([]*domain.Feature, error) {
	return nil, nil
}

func (r *memRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.features), nil
}

func (r *memRepo) FindNearby(ctx context.Context, lon, lat, radius float64, limit int) ([]*domain.Feature, error) {
	return nil, nil
}

func newEnv(t *testing.T, repo *memRepo) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	conv := usecases.NewConversionService(nil, platform.PostgreSQL, usecases.ConversionOptions{})
	env.RegisterWorkflow(workflows.ImportWorkflow)
	env.RegisterActivity(&workflows.ImportActivities{
		Features:    usecases.NewFeatureService(repo, nil, conv),
		Conversions: conv,
	})
	return env
}

func TestImportWorkflow_StoresAll(t *testing.T) {
	repo := newMemRepo()
	env := newEnv(t, repo)

	env.ExecuteWorkflow(workflows.ImportWorkflow, workflows.ImportInput{
		BatchID: "b1",
		Items: []domain.IngestMessage{
			{Name: "a", Family: "geography", Input: "POINT(-2.935 43.263)"},
			{Name: "b", Encoding: "wkb_hex", Input: "0101000000000000000000F03F0000000000000040"},
		},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result workflows.ImportResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, []string{"f-1", "f-2"}, result.FeatureIDs)

	f, err := repo.GetByID(context.Background(), "f-2")
	require.NoError(t, err)
	require.Equal(t, "POINT(1 2)", codec.Encode(f.Geometry))
}

func TestImportWorkflow_InvalidItemStoresNothing(t *testing.T) {
	repo := newMemRepo()
	env := newEnv(t, repo)

	env.ExecuteWorkflow(workflows.ImportWorkflow, workflows.ImportInput{
		BatchID: "b2",
		Items: []domain.IngestMessage{
			{Name: "ok", Input: "POINT(1 2)"},
			{Name: "open ring", Input: "POLYGON((0 0,1 0,1 1))"},
		},
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	require.Contains(t, err.Error(), "open ring")
	require.Zero(t, repo.inserts)
}

func TestImportWorkflow_CompensatesOnStoreFailure(t *testing.T) {
	repo := newMemRepo("flaky")
	env := newEnv(t, repo)

	env.ExecuteWorkflow(workflows.ImportWorkflow, workflows.ImportInput{
		BatchID: "b3",
		Items: []domain.IngestMessage{
			{Name: "first", Input: "POINT(1 2)"},
			{Name: "second", Input: "LINESTRING(0 0,1 1)"},
			{Name: "flaky", Input: "POINT(3 4)"},
		},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, n, "stored features must be rolled back")
	require.Equal(t, 2+3, repo.inserts, "the failing store is retried")
}
