package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bob-takuya/notionsync/internal/convert"
)

// appendChunkSize is the API's limit on blocks per append call.
const appendChunkSize = 100

// Client is a typed Notion REST client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	version    string
	retry      RetryConfig
}

// NewClient builds a client for the given base URL and credentials.
func NewClient(baseURL, apiKey, version string) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		version:    version,
		retry:      DefaultRetryConfig(),
	}
}

// WithHTTPClient swaps the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithRetryConfig overrides the retry policy.
func (c *Client) WithRetryConfig(rc RetryConfig) *Client {
	c.retry = rc
	return c
}

// do issues one API request with retries, decoding a JSON response into
// out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	return withRetry(ctx, c.retry, func() (retryable bool, err error) {
		var reader *bytes.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		} else {
			reader = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return false, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Notion-Version", c.version)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retryableNetErr(err), err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode}
			_ = json.NewDecoder(resp.Body).Decode(apiErr)
			return retryableStatus(resp.StatusCode), withRetryAfter(apiErr, resp)
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return false, fmt.Errorf("decode response: %w", err)
			}
		}
		return false, nil
	})
}

// GetPage retrieves a page by ID.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePage creates a page under the given parent, optionally with
// initial content.
func (c *Client) CreatePage(ctx context.Context, parent Parent, properties map[string]Property, children []convert.Block) (*Page, error) {
	req := struct {
		Parent     Parent              `json:"parent"`
		Properties map[string]Property `json:"properties"`
		Children   []convert.Block     `json:"children,omitempty"`
	}{Parent: parent, Properties: properties}

	// Initial children are capped like appends; the rest follow in
	// separate calls.
	if len(children) > appendChunkSize {
		req.Children = children[:appendChunkSize]
	} else {
		req.Children = children
	}

	var page Page
	if err := c.do(ctx, http.MethodPost, "/pages", req, &page); err != nil {
		return nil, err
	}

	if len(children) > appendChunkSize {
		if err := c.AppendBlockChildren(ctx, page.ID, children[appendChunkSize:]); err != nil {
			return nil, err
		}
	}
	return &page, nil
}

// UpdatePageProperties patches a page's properties.
func (c *Client) UpdatePageProperties(ctx context.Context, pageID string, properties map[string]Property) error {
	req := struct {
		Properties map[string]Property `json:"properties"`
	}{Properties: properties}
	return c.do(ctx, http.MethodPatch, "/pages/"+pageID, req, nil)
}

// ArchivePage archives (soft-deletes) a page.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	req := struct {
		Archived bool `json:"archived"`
	}{Archived: true}
	return c.do(ctx, http.MethodPatch, "/pages/"+pageID, req, nil)
}

type blockChildrenResponse struct {
	Results    []RawBlock `json:"results"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor"`
}

// GetBlockChildren lists all child blocks of a block or page, following
// pagination cursors.
func (c *Client) GetBlockChildren(ctx context.Context, blockID string) ([]RawBlock, error) {
	var blocks []RawBlock
	cursor := ""
	for {
		path := "/blocks/" + blockID + "/children?page_size=100"
		if cursor != "" {
			path += "&start_cursor=" + url.QueryEscape(cursor)
		}
		var resp blockChildrenResponse
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		blocks = append(blocks, resp.Results...)
		if !resp.HasMore {
			return blocks, nil
		}
		cursor = resp.NextCursor
	}
}

// AppendBlockChildren appends blocks to a page or block, chunked at the
// API's per-call limit.
func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, blocks []convert.Block) error {
	for start := 0; start < len(blocks); start += appendChunkSize {
		end := start + appendChunkSize
		if end > len(blocks) {
			end = len(blocks)
		}
		req := struct {
			Children []convert.Block `json:"children"`
		}{Children: blocks[start:end]}
		if err := c.do(ctx, http.MethodPatch, "/blocks/"+blockID+"/children", req, nil); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBlock removes a block.
func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	return c.do(ctx, http.MethodDelete, "/blocks/"+blockID, nil, nil)
}

// GetDatabase retrieves a database by ID.
func (c *Client) GetDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	if err := c.do(ctx, http.MethodGet, "/databases/"+databaseID, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryDatabase runs a database query, following pagination. A nil filter
// returns every entry.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter *QueryFilter) ([]Page, error) {
	var pages []Page
	cursor := ""
	for {
		req := struct {
			Filter      *QueryFilter `json:"filter,omitempty"`
			StartCursor string       `json:"start_cursor,omitempty"`
			PageSize    int          `json:"page_size"`
		}{Filter: filter, StartCursor: cursor, PageSize: 100}

		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, "/databases/"+databaseID+"/query", req, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

// CreateDatabase creates a database under a parent page.
func (c *Client) CreateDatabase(ctx context.Context, parent Parent, title string, properties map[string]any) (*Database, error) {
	req := struct {
		Parent     Parent         `json:"parent"`
		Title      []convert.Span `json:"title"`
		Properties map[string]any `json:"properties"`
	}{Parent: parent, Title: []convert.Span{{Text: title}}, Properties: properties}

	var db Database
	if err := c.do(ctx, http.MethodPost, "/databases", req, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// GetChildPages lists the child pages directly under a page.
func (c *Client) GetChildPages(ctx context.Context, pageID string) ([]*Page, error) {
	blocks, err := c.GetBlockChildren(ctx, pageID)
	if err != nil {
		return nil, err
	}

	var pages []*Page
	for _, block := range blocks {
		if block.Type != "child_page" {
			continue
		}
		page, err := c.GetPage(ctx, block.ID)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// ClearPageContent deletes every top-level block of a page.
func (c *Client) ClearPageContent(ctx context.Context, pageID string) error {
	blocks, err := c.GetBlockChildren(ctx, pageID)
	if err != nil {
		return err
	}
	for _, block := range blocks {
		if err := c.DeleteBlock(ctx, block.ID); err != nil {
			return err
		}
	}
	return nil
}
