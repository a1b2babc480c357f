package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pogodata/internal/catalog"
	"github.com/cory-johannsen/pogodata/internal/storage/postgres"
)

func TestPersister_OfferKeepsLatest(t *testing.T) {
	p := newPersister(&postgres.SnapshotRepository{}, 3, zap.NewNop())
	first := &catalog.Snapshot{ID: uuid.New()}
	second := &catalog.Snapshot{ID: uuid.New()}

	p.offer(first)
	p.offer(second)

	require.Len(t, p.pending, 1)
	assert.Same(t, second, <-p.pending)
}

func TestPersister_OfferWithoutRepository(t *testing.T) {
	p := newPersister(nil, 3, zap.NewNop())
	p.offer(&catalog.Snapshot{ID: uuid.New()})
	assert.Empty(t, p.pending)
}

func TestPersister_RunStopsOnCancel(t *testing.T) {
	p := newPersister(nil, 3, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
}
