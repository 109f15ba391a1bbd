package model

import "testing"

// TestBuildDigest tests digest accounting and top-page ordering.
func TestBuildDigest(t *testing.T) {
	t.Parallel()

	r := testReport(t)
	scores := []float64{0.3, 0.9, 0.5, 0.7, 0.85, 0.6}
	for i, s := range scores {
		r.AddResult(&ScrapeResult{
			Page: &PageInfo{
				URL:          "https://example.com/p" + string(rune('a'+i)),
				ContentScore: s,
				WordCount:    100,
			},
		})
	}
	r.AddResult(&ScrapeResult{
		Page:  &PageInfo{URL: "https://example.com/broken"},
		Error: "boom",
	})
	r.AddInsight(Insight{Category: CategoryDataAnalytics, Title: "GA4", Value: "G-1"})
	r.AddInsight(Insight{Category: CategoryDataAnalytics, Title: "GTM", Value: "GTM-1"})
	r.Finish(nil)

	d := BuildDigest(r)

	if d.TotalPages != 7 || d.Successful != 6 || d.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 7/6/1", d.TotalPages, d.Successful, d.Failed)
	}
	if d.TotalWords != 600 {
		t.Errorf("total words = %d, want 600", d.TotalWords)
	}
	if len(d.TopPages) != 5 {
		t.Fatalf("expected 5 top pages, got %d", len(d.TopPages))
	}
	if d.TopPages[0].ContentScore != 0.9 {
		t.Errorf("top page score = %v, want 0.9", d.TopPages[0].ContentScore)
	}
	for i := 1; i < len(d.TopPages); i++ {
		if d.TopPages[i].ContentScore > d.TopPages[i-1].ContentScore {
			t.Error("top pages should be sorted descending by score")
		}
	}
	if d.InsightCounts[CategoryDataAnalytics] != 2 {
		t.Errorf("insight count = %d, want 2", d.InsightCounts[CategoryDataAnalytics])
	}
	if len(d.Failures) != 1 {
		t.Errorf("expected 1 failure, got %d", len(d.Failures))
	}
	if d.AllFailed() {
		t.Error("AllFailed should be false with successes present")
	}
}

// TestDigestAllFailed tests the all-failed condition used for report alerts.
func TestDigestAllFailed(t *testing.T) {
	t.Parallel()

	r := testReport(t)
	r.AddResult(&ScrapeResult{Page: &PageInfo{URL: "https://example.com/x"}, Error: "nope"})
	r.Finish(nil)

	if !BuildDigest(r).AllFailed() {
		t.Error("AllFailed should be true when every page failed")
	}
}
