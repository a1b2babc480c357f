package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pogodata/internal/catalog"
	"github.com/cory-johannsen/pogodata/internal/storage/postgres"
)

// persister saves published snapshots off the rebuild path. Only the newest
// pending snapshot is kept; an older one still waiting is replaced.
type persister struct {
	repo    *postgres.SnapshotRepository
	keep    int
	logger  *zap.Logger
	pending chan *catalog.Snapshot
}

func newPersister(repo *postgres.SnapshotRepository, keep int, logger *zap.Logger) *persister {
	return &persister{repo: repo, keep: keep, logger: logger, pending: make(chan *catalog.Snapshot, 1)}
}

// offer queues snap for saving without blocking the rebuild.
func (p *persister) offer(snap *catalog.Snapshot) {
	if p.repo == nil {
		return
	}
	for {
		select {
		case p.pending <- snap:
			return
		default:
		}
		select {
		case stale := <-p.pending:
			p.logger.Debug("dropping unsaved snapshot", zap.String("snapshot", stale.ID.String()))
		default:
		}
	}
}

// Run saves queued snapshots until ctx is cancelled, then saves whatever is
// still pending.
func (p *persister) Run(ctx context.Context) error {
	for {
		select {
		case snap := <-p.pending:
			p.save(ctx, snap)
		case <-ctx.Done():
			select {
			case snap := <-p.pending:
				p.save(context.Background(), snap)
			default:
			}
			return ctx.Err()
		}
	}
}

func (p *persister) save(ctx context.Context, snap *catalog.Snapshot) {
	data, err := snap.Encode()
	if err != nil {
		p.logger.Error("encoding snapshot", zap.Error(err))
		return
	}
	stored, inserted, err := p.repo.Save(ctx, snap.ID, snap.BuiltAt, data)
	if err != nil {
		p.logger.Error("saving snapshot", zap.String("snapshot", snap.ID.String()), zap.Error(err))
		return
	}
	if !inserted {
		p.logger.Info("snapshot content unchanged", zap.String("stored_id", stored.ID.String()))
		return
	}
	p.logger.Info("snapshot saved",
		zap.String("snapshot", stored.ID.String()),
		zap.String("digest", stored.Digest),
		zap.Int("bytes", stored.SizeBytes),
	)
	if p.keep > 0 {
		n, err := p.repo.Prune(ctx, p.keep)
		if err != nil {
			p.logger.Warn("pruning snapshots", zap.Error(err))
			return
		}
		p.logger.Debug("pruned snapshots", zap.Int64("deleted", n))
	}
}
