package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"CrediScan/internal/domain/models"
	"CrediScan/internal/domain/repository"
	"CrediScan/pkg/config"
	xhttp "CrediScan/pkg/http"
)

const maxFeedBytes = 5 << 20

const feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"

// RSSSource fetches one RSS/Atom endpoint.
type RSSSource struct {
	name   string
	url    string
	client *xhttp.Client
	parser *gofeed.Parser
}

func NewRSSSource(name, url string, client *xhttp.Client) *RSSSource {
	if client == nil {
		client = xhttp.NewClient(xhttp.WithMaxBodyBytes(maxFeedBytes))
	}
	return &RSSSource{
		name:   name,
		url:    url,
		client: client,
		parser: gofeed.NewParser(),
	}
}

// NewRSSSources builds one source per configured feed. Timeouts come from the caller's context.
func NewRSSSources(cfg config.News) []repository.FeedSource {
	client := xhttp.NewClient(
		xhttp.WithUserAgent(cfg.UserAgent),
		xhttp.WithMaxBodyBytes(maxFeedBytes),
		xhttp.WithHTTPClient(&http.Client{}),
	)
	out := make([]repository.FeedSource, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		out = append(out, NewRSSSource(s.Name, s.URL, client))
	}
	return out
}

func (s *RSSSource) Name() string { return s.name }

func (s *RSSSource) Fetch(ctx context.Context, limit int) ([]models.Article, error) {
	var feed *gofeed.Feed
	err := s.client.Stream(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     s.url,
		Headers: map[string]string{"Accept": feedAccept},
	}, func(body io.Reader) error {
		f, err := s.parser.Parse(body)
		if err != nil {
			return fmt.Errorf("failed to parse feed: %w", err)
		}
		feed = f
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.name, err)
	}

	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]models.Article, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		out = append(out, s.toArticle(it))
	}
	return out, nil
}

func (s *RSSSource) toArticle(it *gofeed.Item) models.Article {
	a := models.Article{
		Title:   strings.TrimSpace(it.Title),
		Summary: plainText(it.Description),
		Source:  s.name,
		Link:    it.Link,
	}
	switch {
	case it.PublishedParsed != nil:
		a.Published = *it.PublishedParsed
	case it.UpdatedParsed != nil:
		a.Published = *it.UpdatedParsed
	}
	return a
}

// plainText strips markup from a feed summary.
func plainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return strings.TrimSpace(html)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
