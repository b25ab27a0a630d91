// Package analysis ranks the day's probable pitchers by home-run
// vulnerability.
package analysis

import (
	"sort"

	"github.com/djstrauss/dingertuesday/internal/modules/daily"
)

// Config holds the analyzer thresholds.
type Config struct {
	// MinSampleSize is the minimum batters faced for a rate to be
	// meaningful.
	MinSampleSize int
	// MinHRRate is the floor, in percent, below which a pitcher is
	// treated as noise rather than a target.
	MinHRRate float64
	// TopN caps the ranked output.
	TopN int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MinSampleSize: 100,
		MinHRRate:     0.5,
		TopN:          3,
	}
}

// Score is one ranked pitcher with the derived HR rate.
type Score struct {
	Pitcher daily.Pitcher
	// HRRate is home runs allowed per batter faced, in percent.
	HRRate float64
}

// Analyze ranks pitchers by HR rate, descending. Rows with sentinel
// stats or too small a sample are discarded; ties break on more home
// runs allowed, then stable input order. Pure function: the same input
// always yields the same ordered output.
func Analyze(pitchers []daily.Pitcher, cfg Config) []Score {
	scores := make([]Score, 0, len(pitchers))
	for _, p := range pitchers {
		if !p.HasStats() {
			continue
		}
		if p.BattersFaced < cfg.MinSampleSize {
			continue
		}
		rate := float64(p.HomeRunsAllowed) / float64(p.BattersFaced) * 100
		if rate < cfg.MinHRRate {
			continue
		}
		scores = append(scores, Score{Pitcher: p, HRRate: rate})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].HRRate != scores[j].HRRate {
			return scores[i].HRRate > scores[j].HRRate
		}
		return scores[i].Pitcher.HomeRunsAllowed > scores[j].Pitcher.HomeRunsAllowed
	})

	if cfg.TopN > 0 && len(scores) > cfg.TopN {
		scores = scores[:cfg.TopN]
	}
	return scores
}
