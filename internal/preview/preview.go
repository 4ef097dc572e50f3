package preview

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const fetchTimeout = 5 * time.Second

// Fetcher resolves page titles for link previews. It never returns an error:
// any failure degrades to the URL itself as the title.
type Fetcher struct {
	client *http.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: fetchTimeout}}
}

// FetchTitle returns the page title for the given URL, or the URL itself when
// the fetch or parse fails. The second return reports whether a real title
// was found, for metrics only.
func (f *Fetcher) FetchTitle(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return url, false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return url, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return url, false
	}

	title := extractTitle(resp)
	if title == "" {
		return url, false
	}
	return title, true
}

// extractTitle tokenizes the body until the first <title> text node.
func extractTitle(resp *http.Response) string {
	z := html.NewTokenizer(resp.Body)
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				return ""
			}
		case html.TextToken:
			if inTitle {
				if title := strings.TrimSpace(z.Token().Data); title != "" {
					return title
				}
			}
		}
	}
}
