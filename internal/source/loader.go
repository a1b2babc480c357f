package source

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/pogodata/internal/config"
)

// Fetcher retrieves one remote resource.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Loader fetches every configured input concurrently.
type Loader struct {
	fetcher Fetcher
	sources config.SourcesConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewLoader creates a Loader over the configured sources.
//
// Precondition: fetcher must be non-nil.
// Postcondition: a nil logger is replaced by a no-op logger.
func NewLoader(fetcher Fetcher, sources config.SourcesConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, sources: sources, logger: logger, now: time.Now}
}

// Load fetches all inputs. Sibling fetches run concurrently and all complete
// before Load returns; the first failure cancels the rest.
//
// Postcondition: Returns a complete Bundle or the first fetch error.
func (l *Loader) Load(ctx context.Context) (*Bundle, error) {
	start := l.now()
	b := &Bundle{Locales: make([]Locale, len(l.sources.Locales))}

	eg, egCtx := errgroup.WithContext(ctx)
	fetch := func(name, url string, dst *[]byte) {
		if url == "" {
			l.logger.Debug("source disabled", zap.String("source", name))
			return
		}
		eg.Go(func() error {
			data, err := l.fetcher.Fetch(egCtx, url)
			if err != nil {
				return fmt.Errorf("source %s: %w", name, err)
			}
			*dst = data
			l.logger.Debug("source fetched",
				zap.String("source", name),
				zap.Int("bytes", len(data)),
			)
			return nil
		})
	}

	fetch("gamemaster", l.sources.GameMaster, &b.GameMaster)
	fetch("protos", l.sources.Protos, &b.Protos)
	for i, loc := range l.sources.Locales {
		b.Locales[i].Format = loc.Format
		fetch(fmt.Sprintf("locales[%d]", i), loc.URL, &b.Locales[i].Body)
	}
	fetch("raids", l.sources.Raids, &b.Raids)
	fetch("guards", l.sources.Guards, &b.Guards)
	fetch("quests", l.sources.Quests, &b.Quests)
	fetch("events", l.sources.Events, &b.Events)
	fetch("icon_manifest", l.sources.IconManifest, &b.IconManifest)

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	b.FetchedAt = l.now().UTC()
	l.logger.Info("bundle loaded", zap.Duration("elapsed", l.now().Sub(start)))
	return b, nil
}
