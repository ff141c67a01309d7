package scheduler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshaybhat/equiscan/internal/domain"
	"github.com/akshaybhat/equiscan/internal/modules/rebalancing"
	"github.com/akshaybhat/equiscan/internal/modules/screening"
)

type fakeScreener struct {
	err error
}

func (f *fakeScreener) Screen(_ context.Context, _ []string, _ float64, _ int) (*screening.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &screening.Result{RunID: "run-1"}, nil
}

type fakeRebalancer struct {
	err error
}

func (f *fakeRebalancer) Rebalance(_ context.Context) (*rebalancing.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &rebalancing.Report{ScreeningRunID: "run-2"}, nil
}

type fakeStore struct {
	saved []string
	err   error
}

func (f *fakeStore) Save(id, _, _ string, _ any) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, id)
	return nil
}

func TestScreeningJobRun(t *testing.T) {
	store := &fakeStore{}
	job := NewScreeningJob(&fakeScreener{}, store, []string{"RELIANCE"}, 50_000, 10, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, []string{"run-1"}, store.saved)
	assert.Equal(t, "screening", job.Name())
}

func TestScreeningJobPropagatesError(t *testing.T) {
	job := NewScreeningJob(&fakeScreener{err: domain.ErrNoData}, &fakeStore{}, nil, 50_000, 10, zerolog.Nop())

	require.ErrorIs(t, job.Run(), domain.ErrNoData)
}

func TestRebalanceJobRun(t *testing.T) {
	store := &fakeStore{}
	job := NewRebalanceJob(&fakeRebalancer{}, store, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, []string{"run-2"}, store.saved)
	assert.Equal(t, "rebalance", job.Name())
}

func TestRebalanceJobPropagatesError(t *testing.T) {
	job := NewRebalanceJob(&fakeRebalancer{err: domain.ErrAuth}, &fakeStore{}, zerolog.Nop())

	require.ErrorIs(t, job.Run(), domain.ErrAuth)
}
