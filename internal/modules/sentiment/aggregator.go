// Package sentiment merges per-source news fragments into a single
// market-sentiment snapshot consumed by scoring.
package sentiment

import (
	"sort"
	"time"

	"github.com/akshaybhat/equiscan/internal/domain"
)

// Voting thresholds. A fragment votes only when its own score is decisive;
// the vote itself is a fixed increment so one noisy source cannot swing the
// aggregate the way averaging would.
const (
	fragmentVoteThreshold = 0.3
	fragmentVote          = 0.1
	polarityThreshold     = 0.2
)

// Aggregate merges source fragments into one snapshot. An empty fragment
// set yields a neutral zero-score snapshot, never an error.
func Aggregate(fragments []domain.SourceFragment) domain.MarketSentimentSnapshot {
	score := 0.0
	themeSet := make(map[string]struct{})
	sectors := make(map[string]string)

	for _, f := range fragments {
		switch {
		case f.SentimentScore > fragmentVoteThreshold:
			score += fragmentVote
		case f.SentimentScore < -fragmentVoteThreshold:
			score -= fragmentVote
		}

		for _, theme := range f.Themes {
			themeSet[theme] = struct{}{}
		}
		for sector, polarity := range f.SectorSentiment {
			sectors[sector] = polarity
		}
	}

	themes := make([]string, 0, len(themeSet))
	for theme := range themeSet {
		themes = append(themes, theme)
	}
	sort.Strings(themes)

	return domain.MarketSentimentSnapshot{
		FetchedAt:        time.Now(),
		OverallSentiment: bucket(score),
		SentimentScore:   score,
		KeyThemes:        themes,
		SectorSentiment:  sectors,
		SourceSummaries:  fragments,
	}
}

func bucket(score float64) domain.Polarity {
	switch {
	case score > polarityThreshold:
		return domain.PolarityPositive
	case score < -polarityThreshold:
		return domain.PolarityNegative
	default:
		return domain.PolarityNeutral
	}
}
