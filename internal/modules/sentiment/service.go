package sentiment

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/akshaybhat/equiscan/internal/cache"
	"github.com/akshaybhat/equiscan/internal/domain"
)

const snapshotCacheKey = "market"

// Service produces market-sentiment snapshots from a fragment source, cached
// with a 30 minute TTL so a full screening run shares one snapshot.
type Service struct {
	source        domain.SentimentSource
	snapshotCache *cache.TTLCache[domain.MarketSentimentSnapshot]
	globalEvents  []domain.GlobalEvent
	baseSectors   map[string]string
	log           zerolog.Logger
}

// NewService creates a sentiment service. globalEvents and baseSectors are
// static context merged into every snapshot; fragment-level sector hits
// override the baseline.
func NewService(
	source domain.SentimentSource,
	globalEvents []domain.GlobalEvent,
	baseSectors map[string]string,
	log zerolog.Logger,
) *Service {
	return &Service{
		source:        source,
		snapshotCache: cache.New[domain.MarketSentimentSnapshot](cache.TTLSentiment),
		globalEvents:  globalEvents,
		baseSectors:   baseSectors,
		log:           log.With().Str("service", "sentiment").Logger(),
	}
}

// Snapshot returns the current market-sentiment snapshot. A fragment-source
// failure degrades to a neutral snapshot rather than failing the caller; a
// screening run must be able to proceed on price signals alone.
func (s *Service) Snapshot(ctx context.Context) domain.MarketSentimentSnapshot {
	if snap, ok := s.snapshotCache.Get(snapshotCacheKey); ok {
		return snap
	}

	fragments, err := s.source.FetchFragments(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Sentiment source failed, using neutral snapshot")
		fragments = nil
	}

	snap := Aggregate(fragments)

	for sector, polarity := range s.baseSectors {
		if _, ok := snap.SectorSentiment[sector]; !ok {
			snap.SectorSentiment[sector] = polarity
		}
	}
	snap.GlobalEvents = s.globalEvents

	s.snapshotCache.Set(snapshotCacheKey, snap)
	s.log.Info().
		Str("overall", string(snap.OverallSentiment)).
		Float64("score", snap.SentimentScore).
		Int("sources", len(fragments)).
		Msg("Aggregated market sentiment")
	return snap
}
