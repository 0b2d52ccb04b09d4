// Package websearch provides the site-scoped search fallback used when the
// wiki's own ranking cannot be trusted.
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

const defaultTimeout = 20 * time.Second

// Client queries a Custom Search JSON API endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	cx         string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey, cx string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		cx:       cx,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Search returns up to limit result URLs for the query, restricted to the
// given site domain.
func (c *Client) Search(ctx context.Context, query, site string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.cx)
	params.Set("q", query)
	params.Set("siteSearch", site)
	params.Set("num", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search failed: HTTP %d", resp.StatusCode)
	}

	var urls []string
	gjson.GetBytes(body, "items").ForEach(func(_, item gjson.Result) bool {
		if link := item.Get("link").String(); link != "" {
			urls = append(urls, link)
		}
		return len(urls) < limit
	})

	return urls, nil
}
