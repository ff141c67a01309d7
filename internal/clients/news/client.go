// Package news implements the news sentiment source: it scrapes headline
// pages from Indian financial news sites and scores them against keyword
// lists, producing per-source sentiment fragments.
package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/akshaybhat/equiscan/internal/domain"
)

const (
	maxHeadlinesPerSource = 10
	maxSampleHeadlines    = 5
	fetchTimeout          = 10 * time.Second
	userAgent             = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// defaultSources are the headline pages scanned for market sentiment.
var defaultSources = map[string]string{
	"moneycontrol":      "https://www.moneycontrol.com/news/business/stocks/",
	"economic_times":    "https://economictimes.indiatimes.com/markets/stocks/news",
	"livemint":          "https://www.livemint.com/market",
	"business_standard": "https://www.business-standard.com/markets",
	"reuters_india":     "https://www.reuters.com/world/india/",
}

// Client scrapes news sources and produces sentiment fragments. It
// implements domain.SentimentSource. A per-client rate limiter keeps the
// scraper polite toward the news sites.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	sources    map[string]string
	log        zerolog.Logger
}

// NewClient creates a news client with the default source list.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: fetchTimeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		sources:    defaultSources,
		log:        log.With().Str("client", "news").Logger(),
	}
}

// SetSources overrides the source map. Used by tests.
func (c *Client) SetSources(sources map[string]string) {
	c.sources = sources
}

// FetchFragments fetches and scores every configured source. A source that
// fails to fetch or parse is skipped with a warning; the remaining sources
// still produce fragments. An empty result is valid.
func (c *Client) FetchFragments(ctx context.Context) ([]domain.SourceFragment, error) {
	names := make([]string, 0, len(c.sources))
	for name := range c.sources {
		names = append(names, name)
	}
	sort.Strings(names)

	fragments := make([]domain.SourceFragment, 0, len(names))
	for _, name := range names {
		if err := c.limiter.Wait(ctx); err != nil {
			return fragments, fmt.Errorf("news fetch cancelled: %w", err)
		}

		frag, err := c.analyzeSource(ctx, name, c.sources[name])
		if err != nil {
			c.log.Warn().Err(err).Str("source", name).Msg("Failed to analyze news source")
			continue
		}
		fragments = append(fragments, frag)
	}

	return fragments, nil
}

// GlobalEvents returns the static list of macro events monitored alongside
// scraped sentiment.
func GlobalEvents() []domain.GlobalEvent {
	return []domain.GlobalEvent{
		{Event: "Federal Reserve Meeting", Impact: "high", Sentiment: "neutral"},
		{Event: "US Inflation Data", Impact: "medium", Sentiment: "neutral"},
		{Event: "China GDP Growth", Impact: "medium", Sentiment: "neutral"},
		{Event: "Oil Price Movement", Impact: "medium", Sentiment: "neutral"},
		{Event: "Global Supply Chain", Impact: "medium", Sentiment: "neutral"},
	}
}

// SectorSentiment returns the baseline per-sector polarity map, merged with
// scraped fragment hits by the aggregator.
func SectorSentiment() map[string]string {
	return map[string]string{
		"technology":      "positive",
		"banking":         "neutral",
		"pharmaceuticals": "positive",
		"automotive":      "neutral",
		"energy":          "negative",
		"fmcg":            "positive",
		"metals":          "neutral",
		"real_estate":     "neutral",
	}
}

func (c *Client) analyzeSource(ctx context.Context, name, url string) (domain.SourceFragment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.SourceFragment{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SourceFragment{}, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.SourceFragment{}, fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, resp.StatusCode)
	}

	headlines, err := extractHeadlines(resp.Body)
	if err != nil {
		return domain.SourceFragment{}, err
	}
	if len(headlines) == 0 {
		return domain.SourceFragment{}, fmt.Errorf("%w: no headlines found", domain.ErrSourceUnavailable)
	}

	return scoreHeadlines(name, headlines), nil
}

// extractHeadlines pulls up to maxHeadlinesPerSource texts out of the page's
// heading elements.
func extractHeadlines(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var headlines []string
	doc.Find("h1, h2, h3").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			headlines = append(headlines, text)
		}
		return len(headlines) < maxHeadlinesPerSource
	})

	return headlines, nil
}

// scoreHeadlines counts positive and negative keyword hits across headlines
// and derives a per-source score in [-1,1] plus sector theme tags.
func scoreHeadlines(source string, headlines []string) domain.SourceFragment {
	positive := 0
	negative := 0
	themeSet := make(map[string]bool)

	for _, headline := range headlines {
		lower := " " + strings.ToLower(headline) + " "

		for _, word := range positiveKeywords {
			if strings.Contains(lower, word) {
				positive++
			}
		}
		for _, word := range negativeKeywords {
			if strings.Contains(lower, word) {
				negative++
			}
		}

		for theme, words := range themeKeywords {
			for _, word := range words {
				if strings.Contains(lower, word) {
					themeSet[theme] = true
					break
				}
			}
		}
	}

	score := 0.0
	if total := positive + negative; total > 0 {
		score = float64(positive-negative) / float64(total)
	}

	themes := make([]string, 0, len(themeSet))
	for theme := range themeSet {
		themes = append(themes, theme)
	}
	sort.Strings(themes)

	samples := headlines
	if len(samples) > maxSampleHeadlines {
		samples = samples[:maxSampleHeadlines]
	}

	return domain.SourceFragment{
		Source:          source,
		SentimentScore:  score,
		PositiveSignals: positive,
		NegativeSignals: negative,
		Themes:          themes,
		SampleHeadlines: samples,
	}
}
