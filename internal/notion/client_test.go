package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bob-takuya/notionsync/internal/convert"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "secret_key", "2022-06-28").
		WithRetryConfig(RetryConfig{MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond})
}

func TestGetPageSendsHeaders(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret_key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got != "2022-06-28" {
			t.Errorf("Notion-Version = %q", got)
		}
		if r.URL.Path != "/pages/abc" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":"abc","properties":{"title":{"type":"title","title":[{"type":"text","text":{"content":"Home"}}]}}}`)
	})

	page, err := client.GetPage(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page.ID != "abc" {
		t.Errorf("id = %q", page.ID)
	}
	if page.Title() != "Home" {
		t.Errorf("title = %q", page.Title())
	}
}

func TestAppendBlockChildrenChunks(t *testing.T) {
	var calls []int
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Children []json.RawMessage `json:"children"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		calls = append(calls, len(req.Children))
		fmt.Fprint(w, `{}`)
	})

	blocks := make([]convert.Block, 230)
	for i := range blocks {
		blocks[i] = convert.Block{Kind: convert.KindParagraph, Spans: []convert.Span{{Text: "x"}}}
	}
	if err := client.AppendBlockChildren(context.Background(), "abc", blocks); err != nil {
		t.Fatalf("AppendBlockChildren: %v", err)
	}
	want := []int{100, 100, 30}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d size = %d, want %d", i, calls[i], want[i])
		}
	}
}

func TestGetBlockChildrenPaginates(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start_cursor") == "" {
			fmt.Fprint(w, `{"results":[{"id":"b1","type":"paragraph","has_children":false}],"has_more":true,"next_cursor":"cur2"}`)
			return
		}
		fmt.Fprint(w, `{"results":[{"id":"b2","type":"heading_1","has_children":false}],"has_more":false}`)
	})

	blocks, err := client.GetBlockChildren(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetBlockChildren: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[0].ID != "b1" || blocks[1].ID != "b2" {
		t.Errorf("blocks = %+v", blocks)
	}
	if blocks[1].Type != "heading_1" {
		t.Errorf("type = %q", blocks[1].Type)
	}
}

func TestAPIErrorDecoded(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"code":"object_not_found","message":"Could not find page"}`)
	})

	_, err := client.GetPage(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Code != "object_not_found" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestRetriesRateLimit(t *testing.T) {
	attempts := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"code":"rate_limited","message":"slow down"}`)
			return
		}
		fmt.Fprint(w, `{"id":"abc","properties":{}}`)
	})

	if _, err := client.GetPage(context.Background(), "abc"); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoesNotRetryClientError(t *testing.T) {
	attempts := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":"validation_error","message":"bad request"}`)
	})

	_, err := client.GetPage(context.Background(), "abc")
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestClearPageContent(t *testing.T) {
	var deleted []string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = append(deleted, r.URL.Path)
			fmt.Fprint(w, `{}`)
			return
		}
		fmt.Fprint(w, `{"results":[{"id":"b1","type":"paragraph"},{"id":"b2","type":"divider"}],"has_more":false}`)
	})

	if err := client.ClearPageContent(context.Background(), "abc"); err != nil {
		t.Fatalf("ClearPageContent: %v", err)
	}
	if len(deleted) != 2 {
		t.Fatalf("deleted = %v", deleted)
	}
}

func TestQueryDatabaseFilter(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Filter *QueryFilter `json:"filter"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Filter == nil || req.Filter.Property != "Name" || req.Filter.Title.Equals != "note" {
			t.Errorf("filter = %+v", req.Filter)
		}
		fmt.Fprint(w, `{"results":[{"id":"p1","properties":{}}],"has_more":false}`)
	})

	pages, err := client.QueryDatabase(context.Background(), "db1", &QueryFilter{
		Property: "Name",
		Title:    &TitleCondition{Equals: "note"},
	})
	if err != nil {
		t.Fatalf("QueryDatabase: %v", err)
	}
	if len(pages) != 1 || pages[0].ID != "p1" {
		t.Errorf("pages = %+v", pages)
	}
}
