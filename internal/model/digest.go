package model

import (
	"sort"
	"time"
)

// topPageCount is how many top-scoring pages a digest lists.
const topPageCount = 5

// Digest is a condensed view of a ScrapeReport for console and Markdown
// rendering: counts per score band, the best pages, and insight totals.
// Writers consume a Digest instead of re-deriving these numbers.
type Digest struct {
	// Target is the scraped base URL.
	Target string

	// TotalPages is the number of processed pages (including failures).
	TotalPages int

	// Successful is the number of pages processed without error.
	Successful int

	// Failed is the number of pages whose processing failed.
	Failed int

	// TotalWords is the sum of word counts across successful pages.
	TotalWords int

	// AverageScore is the mean content score of successful pages.
	// Zero when there are no successful pages.
	AverageScore float64

	// BandCounts maps each score band to the number of successful pages
	// in it.
	BandCounts map[Band]int

	// TopPages lists up to five successful pages by content score,
	// highest first.
	TopPages []*PageInfo

	// Failures lists the URLs and messages of failed pages.
	Failures []*ScrapeResult

	// InsightCounts maps each category to the number of insights in it.
	InsightCounts map[Category]int

	// TotalTime is the wall-clock duration of the run.
	TotalTime time.Duration

	// UsedFallback is true when the crawl started from the base URL
	// because no sitemap was found.
	UsedFallback bool
}

// BuildDigest condenses a report into a Digest.
func BuildDigest(r *ScrapeReport) *Digest {
	d := &Digest{
		Target:        r.Target,
		TotalPages:    len(r.Results),
		BandCounts:    make(map[Band]int),
		InsightCounts: make(map[Category]int),
		TotalTime:     r.TotalTime(),
		UsedFallback:  r.UsedFallback,
	}

	var scoreSum float64
	successes := make([]*PageInfo, 0, len(r.Results))

	for _, res := range r.Results {
		if !res.Succeeded() {
			d.Failed++
			d.Failures = append(d.Failures, res)
			continue
		}
		d.Successful++
		if res.Page == nil {
			continue
		}
		d.TotalWords += res.Page.WordCount
		scoreSum += res.Page.ContentScore
		d.BandCounts[res.Page.Band()]++
		successes = append(successes, res.Page)
	}

	if d.Successful > 0 {
		d.AverageScore = scoreSum / float64(d.Successful)
	}

	sort.SliceStable(successes, func(i, j int) bool {
		return successes[i].ContentScore > successes[j].ContentScore
	})
	if len(successes) > topPageCount {
		successes = successes[:topPageCount]
	}
	d.TopPages = successes

	for _, in := range r.Insights {
		d.InsightCounts[in.Category]++
	}

	return d
}

// HasInsights reports whether any insights were recorded.
func (d *Digest) HasInsights() bool {
	return len(d.InsightCounts) > 0
}

// AllFailed reports whether every processed page failed.
func (d *Digest) AllFailed() bool {
	return d.TotalPages > 0 && d.Successful == 0
}
