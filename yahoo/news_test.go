package yahoo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nkhyl/folio/date"
)

// rssFeed parses a minimal RSS 2.0 document wrapping the given items.
func rssFeed(t *testing.T, items ...string) *gofeed.Feed {
	t.Helper()
	doc := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>feed</title>` +
		strings.Join(items, "") + `</channel></rss>`
	feed, err := gofeed.NewParser().ParseString(doc)
	if err != nil {
		t.Fatalf("cannot parse rss fixture: %v", err)
	}
	return feed
}

func rssItem(title, link string, at time.Time) string {
	return fmt.Sprintf("<item><title>%s</title><link>%s</link><pubDate>%s</pubDate></item>",
		title, link, at.Format(time.RFC1123Z))
}

func TestCollectNews_MergesBothFeedsNewestFirst(t *testing.T) {
	now := time.Now()
	window := date.LastDays(date.Today(), newsWindow)

	yahoo := rssFeed(t,
		rssItem("Apple ships a new thing", "https://yahoo/a", now.AddDate(0, 0, -3)),
		rssItem("Earnings call scheduled", "https://yahoo/b", now.AddDate(0, 0, -1)),
	)
	google := rssFeed(t,
		rssItem("Analysts weigh in", "https://google/c", now.AddDate(0, 0, -2)),
	)

	items := collectNews([]*gofeed.Feed{yahoo, google}, window)
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	wantTitles := []string{"Earnings call scheduled", "Analysts weigh in", "Apple ships a new thing"}
	for i, want := range wantTitles {
		if items[i].Title != want {
			t.Errorf("items[%d].Title = %q, want %q", i, items[i].Title, want)
		}
	}
	if want := date.FromUnixMilli(now.AddDate(0, 0, -1).UnixMilli()); items[0].Date != want {
		t.Errorf("items[0].Date = %v, want %v", items[0].Date, want)
	}
}

func TestCollectNews_FirstSourceWinsDuplicateTitles(t *testing.T) {
	now := time.Now()
	window := date.LastDays(date.Today(), newsWindow)

	yahoo := rssFeed(t, rssItem("Same headline", "https://yahoo/a", now.AddDate(0, 0, -1)))
	google := rssFeed(t, rssItem("Same headline", "https://google/a", now.AddDate(0, 0, -1)))

	items := collectNews([]*gofeed.Feed{yahoo, google}, window)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Link != "https://yahoo/a" {
		t.Errorf("Link = %q, want the first source's link", items[0].Link)
	}
}

func TestCollectNews_DropsStaleAndUndatedEntries(t *testing.T) {
	now := time.Now()
	window := date.LastDays(date.Today(), newsWindow)

	feed := rssFeed(t,
		rssItem("Fresh enough", "https://x/fresh", now.AddDate(0, 0, -10)),
		rssItem("Old news", "https://x/old", now.AddDate(0, 0, -200)),
		"<item><title>No date at all</title><link>https://x/undated</link></item>",
	)

	items := collectNews([]*gofeed.Feed{feed}, window)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Title != "Fresh enough" {
		t.Errorf("Title = %q, want the fresh entry", items[0].Title)
	}
}

func TestCollectNews_WindowBoundariesAreDayGranular(t *testing.T) {
	now := time.Now()
	window := date.LastDays(date.Today(), newsWindow)

	feed := rssFeed(t,
		rssItem("Last day inside", "https://x/in", now.AddDate(0, 0, 1-newsWindow)),
		rssItem("One day too old", "https://x/out", now.AddDate(0, 0, -newsWindow)),
	)

	items := collectNews([]*gofeed.Feed{feed}, window)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Title != "Last day inside" {
		t.Errorf("Title = %q, want the entry on the window's first day", items[0].Title)
	}
}

func TestCollectNews_KeepsTheFiveNewest(t *testing.T) {
	now := time.Now()
	window := date.LastDays(date.Today(), newsWindow)

	var entries []string
	for i := 1; i <= 7; i++ {
		entries = append(entries, rssItem(fmt.Sprintf("headline %d", i), "https://x/l", now.AddDate(0, 0, -i)))
	}
	feed := rssFeed(t, entries...)

	items := collectNews([]*gofeed.Feed{feed}, window)
	if len(items) != newsLimit {
		t.Fatalf("len(items) = %d, want %d", len(items), newsLimit)
	}
	if items[0].Title != "headline 1" || items[4].Title != "headline 5" {
		t.Errorf("kept %q..%q, want headline 1..headline 5", items[0].Title, items[4].Title)
	}
}

func TestNewsAddrs_StripExchangeSuffix(t *testing.T) {
	addrs := newsAddrs("RY.TO")
	if len(addrs) != 2 {
		t.Fatalf("len(addrs) = %d, want 2", len(addrs))
	}
	if !strings.Contains(addrs[0], "s=RY&") {
		t.Errorf("yahoo feed = %q, want the bare symbol RY", addrs[0])
	}
	if !strings.Contains(addrs[1], "q=RY+stock+news") {
		t.Errorf("google feed = %q, want the bare symbol RY", addrs[1])
	}
}
