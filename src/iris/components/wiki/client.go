// Package wiki talks to a Fandom-style wiki API and resolves free-text
// search terms to canonical page records.
package wiki

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultTimeout = 30 * time.Second

// Page is one canonical wiki record.
type Page struct {
	ID     int64
	Title  string
	URL    string
	Images []string
}

// Block is one content block within a section.
type Block struct {
	Type     string
	Text     string
	Elements []string
}

// Section is one heading-delimited slice of a page's structured content.
type Section struct {
	Title   string
	Level   int
	Content []Block
}

// Client represents a wiki API client.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the wiki at the given base URL,
// e.g. "https://choices-stories-you-play.fandom.com".
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Search returns up to limit candidate page titles for a query, best first.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	path := fmt.Sprintf("/api/v1/Search/List?query=%s&limit=%d", url.QueryEscape(query), limit)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var titles []string
	gjson.GetBytes(body, "items").ForEach(func(_, item gjson.Result) bool {
		if t := item.Get("title").String(); t != "" {
			titles = append(titles, t)
		}
		return true
	})

	return titles, nil
}

// PageDetails fetches the canonical record for an exact page title.
func (c *Client) PageDetails(ctx context.Context, title string) (*Page, error) {
	path := fmt.Sprintf("/api/v1/Articles/Details?titles=%s&abstract=500", url.QueryEscape(title))
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("page details %q: %w", title, err)
	}

	basepath := gjson.GetBytes(body, "basepath").String()
	if basepath == "" {
		basepath = c.endpoint
	}

	var page *Page
	gjson.GetBytes(body, "items").ForEach(func(_, item gjson.Result) bool {
		page = &Page{
			ID:    item.Get("id").Int(),
			Title: item.Get("title").String(),
			URL:   basepath + item.Get("url").String(),
		}
		if thumb := item.Get("thumbnail").String(); thumb != "" {
			page.Images = append(page.Images, thumb)
		}
		return false
	})

	if page == nil || page.Title == "" {
		return nil, fmt.Errorf("page details %q: no record in response", title)
	}

	return page, nil
}

// Sections fetches a page's structured content as an ordered section list.
func (c *Client) Sections(ctx context.Context, pageID int64) ([]Section, error) {
	path := "/api/v1/Articles/AsSimpleJson?id=" + strconv.FormatInt(pageID, 10)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("sections for page %d: %w", pageID, err)
	}

	var sections []Section
	gjson.GetBytes(body, "sections").ForEach(func(_, sec gjson.Result) bool {
		s := Section{
			Title: sec.Get("title").String(),
			Level: int(sec.Get("level").Int()),
		}
		sec.Get("content").ForEach(func(_, blk gjson.Result) bool {
			b := Block{
				Type: blk.Get("type").String(),
				Text: blk.Get("text").String(),
			}
			blk.Get("elements").ForEach(func(_, el gjson.Result) bool {
				b.Elements = append(b.Elements, el.Get("text").String())
				return true
			})
			s.Content = append(s.Content, b)
			return true
		})
		sections = append(sections, s)
		return true
	})

	return sections, nil
}

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
		}
	}

	return respBody, nil
}
