package yahoo

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nkhyl/folio"
	"github.com/nkhyl/folio/date"
)

const (
	yahooFeed  = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"
	googleFeed = "https://news.google.com/rss/search?q=%s+stock+news&hl=en-US&gl=US&ceid=US:en"
)

// newsWindow is how far back a headline stays relevant, in days.
const newsWindow = 90

// newsLimit caps the headlines kept per instrument, the news history file
// has that many slots.
const newsLimit = 5

// News returns recent headlines for a symbol, newest first, at most
// newsLimit of them. Yahoo's feed knows the instrument, Google casts a
// wider net; duplicate titles between the two are dropped. One feed being
// down only costs its headlines, News fails when both are.
func (c *Client) News(symbol string) ([]folio.NewsItem, error) {
	var feeds []*gofeed.Feed
	var errs []error
	for _, addr := range newsAddrs(symbol) {
		feed, err := c.readFeed(addr)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("news feed unavailable")
			errs = append(errs, err)
			continue
		}
		feeds = append(feeds, feed)
	}
	if len(feeds) == 0 {
		return nil, errors.Join(errs...)
	}

	window := date.LastDays(c.today(), newsWindow)
	return collectNews(feeds, window), nil
}

// newsAddrs builds the two feed addresses for a symbol. Exchange suffixes
// confuse both feeds, VT.TO is just VT to them.
func newsAddrs(symbol string) []string {
	base, _, _ := strings.Cut(symbol, ".")
	return []string{
		fmt.Sprintf(yahooFeed, url.QueryEscape(base)),
		fmt.Sprintf(googleFeed, url.QueryEscape(base)),
	}
}

// readFeed downloads and parses one RSS feed through the caching client.
func (c *Client) readFeed(addr string) (*gofeed.Feed, error) {
	resp, err := fetch(c.http, addr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return gofeed.NewParser().Parse(resp.Body)
}

// collectNews merges feed entries into one headline list: undated entries
// and entries outside the window drop, the first occurrence of a title
// wins, the rest sort newest first and the top newsLimit remain.
func collectNews(feeds []*gofeed.Feed, window date.Range) []folio.NewsItem {
	type dated struct {
		item folio.NewsItem
		at   time.Time
	}
	var all []dated
	seen := make(map[string]bool)
	for _, feed := range feeds {
		if feed == nil {
			continue
		}
		for _, entry := range feed.Items {
			if entry == nil || entry.PublishedParsed == nil {
				continue
			}
			at := *entry.PublishedParsed
			day := date.FromUnixMilli(at.UnixMilli())
			if !window.Contains(day) {
				continue
			}
			if seen[entry.Title] {
				continue
			}
			seen[entry.Title] = true
			all = append(all, dated{
				item: folio.NewsItem{
					Title: entry.Title,
					Link:  entry.Link,
					Date:  day,
				},
				at: at,
			})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[j].at.Before(all[i].at) })
	if len(all) > newsLimit {
		all = all[:newsLimit]
	}
	items := make([]folio.NewsItem, 0, len(all))
	for _, d := range all {
		items = append(items, d.item)
	}
	return items
}
