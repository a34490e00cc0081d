package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	xhttp "CrediScan/pkg/http"
)

func testClient(srv *httptest.Server, ua string) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithHTTPClient(srv.Client()), xhttp.WithUserAgent(ua))
}

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <link>https://example.org</link>
  <description>fixture</description>
  <item>
    <title>  Parliament approves climate package </title>
    <link>https://example.org/1</link>
    <description>&lt;p&gt;Lawmakers &lt;b&gt;voted&lt;/b&gt; late on Monday.&lt;/p&gt;</description>
    <pubDate>Mon, 06 May 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Second story</title>
    <link>https://example.org/2</link>
    <description>Plain summary</description>
  </item>
  <item>
    <title>Third story</title>
    <link>https://example.org/3</link>
  </item>
</channel>
</rss>`

func TestRSSSource_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	src := NewRSSSource("test", srv.URL, testClient(srv, "crediscan-test"))
	items, err := src.Fetch(context.Background(), 2)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("limit not applied: got %d items", len(items))
	}
	first := items[0]
	if first.Title != "Parliament approves climate package" {
		t.Fatalf("title not trimmed: %q", first.Title)
	}
	if first.Summary != "Lawmakers voted late on Monday." {
		t.Fatalf("summary not plain text: %q", first.Summary)
	}
	if first.Source != "test" || first.Link != "https://example.org/1" {
		t.Fatalf("unexpected article %+v", first)
	}
	if first.Published.IsZero() {
		t.Fatal("published date not parsed")
	}
	if gotUA != "crediscan-test" {
		t.Fatalf("user agent not sent: %q", gotUA)
	}
}

func TestRSSSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewRSSSource("down", srv.URL, testClient(srv, "")).Fetch(context.Background(), 10)
	var se *xhttp.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 status error, got %v", err)
	}
}

func TestRSSSource_Garbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	_, err := NewRSSSource("junk", srv.URL, testClient(srv, "")).Fetch(context.Background(), 10)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPlainText(t *testing.T) {
	if got := plainText("no markup"); got != "no markup" {
		t.Fatalf("got %q", got)
	}
	if got := plainText("<div>a <i>b</i>\n c</div>"); got != "a b c" {
		t.Fatalf("got %q", got)
	}
}
