// Package azdo is a client for the Azure DevOps work item tracking REST API.
// It covers the handful of operations the dashboard needs: WIQL queries,
// batched reads, revision history, hierarchy traversal and JSON-Patch updates.
package azdo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teamdash/roadmap-service/internal/logging"
)

const (
	// DefaultTimeout for ordinary HTTP requests.
	DefaultTimeout = 30 * time.Second

	// DefaultRevisionTimeout for revision history calls, which can be very
	// slow on items with long histories. The default client timeout was too
	// aggressive for these.
	DefaultRevisionTimeout = 120 * time.Second

	// DefaultBatchCap is the upstream limit on IDs per workitemsbatch call.
	DefaultBatchCap = 200

	defaultAPIVersion    = "7.0"
	defaultRetryAttempts = 3
	defaultRetryDelay    = time.Second
)

// ErrNotFound is returned when the upstream reports 404 for a resource.
var ErrNotFound = errors.New("not found in Azure DevOps")

// StatusError is a non-2xx upstream response that was not retried (or
// exhausted its retries).
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("azure devops returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Client talks to one Azure DevOps organisation/project.
type Client struct {
	orgURL     string
	project    string
	pat        string
	apiVersion string

	httpClient     *http.Client
	revisionClient *http.Client

	retryAttempts  int
	retryBaseDelay time.Duration
	batchCap       int
}

// Options configures a Client. OrgURL, Project and PAT are required.
type Options struct {
	OrgURL     string
	Project    string
	PAT        string
	APIVersion string

	Timeout         time.Duration
	RevisionTimeout time.Duration

	RetryAttempts  int
	RetryBaseDelay time.Duration

	WorkItemBatchCap int
}

// NewClient creates a client for the given organisation and project.
func NewClient(opts Options) (*Client, error) {
	if opts.OrgURL == "" || opts.Project == "" || opts.PAT == "" {
		return nil, fmt.Errorf("azdo: OrgURL, Project and PAT are all required")
	}
	if opts.APIVersion == "" {
		opts.APIVersion = defaultAPIVersion
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RevisionTimeout <= 0 {
		opts.RevisionTimeout = DefaultRevisionTimeout
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = defaultRetryAttempts
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = defaultRetryDelay
	}
	if opts.WorkItemBatchCap <= 0 {
		opts.WorkItemBatchCap = DefaultBatchCap
	}

	return &Client{
		orgURL:         strings.TrimRight(opts.OrgURL, "/"),
		project:        opts.Project,
		pat:            opts.PAT,
		apiVersion:     opts.APIVersion,
		httpClient:     &http.Client{Timeout: opts.Timeout},
		revisionClient: &http.Client{Timeout: opts.RevisionTimeout},
		retryAttempts:  opts.RetryAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
		batchCap:       opts.WorkItemBatchCap,
	}, nil
}

func (c *Client) apiURL(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", c.apiVersion)
	return fmt.Sprintf("%s/%s/_apis/%s?%s", c.orgURL, url.PathEscape(c.project), path, query.Encode())
}

// QueryWorkItemIDs runs a flat WIQL query and returns the matching IDs.
func (c *Client) QueryWorkItemIDs(ctx context.Context, query string) ([]int, error) {
	var resp WiqlResponse
	if err := c.doJSON(ctx, c.httpClient, http.MethodPost, c.apiURL("wit/wiql", nil), "application/json", WiqlRequest{Query: query}, &resp); err != nil {
		return nil, fmt.Errorf("wiql query: %w", err)
	}
	ids := make([]int, 0, len(resp.WorkItems))
	for _, ref := range resp.WorkItems {
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

// ChildIDs returns the IDs linked below parentID via the hierarchy-forward
// link type. With recursive set, the whole subtree is returned; otherwise
// only direct children.
func (c *Client) ChildIDs(ctx context.Context, parentID int, recursive bool) ([]int, error) {
	mode := "MustContain"
	if recursive {
		mode = "Recursive"
	}
	query := fmt.Sprintf(
		"SELECT [System.Id] FROM WorkItemLinks WHERE ([Source].[System.Id] = %d) AND ([System.Links.LinkType] = 'System.LinkTypes.Hierarchy-Forward') MODE (%s)",
		parentID, mode,
	)

	var resp WiqlResponse
	if err := c.doJSON(ctx, c.httpClient, http.MethodPost, c.apiURL("wit/wiql", nil), "application/json", WiqlRequest{Query: query}, &resp); err != nil {
		return nil, fmt.Errorf("hierarchy query for %d: %w", parentID, err)
	}

	seen := map[int]bool{parentID: true}
	var ids []int
	for _, link := range resp.WorkItemLinks {
		// The source item appears as a relation with an empty rel.
		if link.Rel == "" || link.Target.ID == 0 || seen[link.Target.ID] {
			continue
		}
		seen[link.Target.ID] = true
		ids = append(ids, link.Target.ID)
	}
	return ids, nil
}

// GetWorkItems fetches the given IDs, splitting the request at the upstream
// batch cap. The order of the result follows the upstream responses; missing
// IDs are omitted rather than failing the whole call.
func (c *Client) GetWorkItems(ctx context.Context, ids []int, fields []string) ([]WorkItem, error) {
	items := make([]WorkItem, 0, len(ids))
	for start := 0; start < len(ids); start += c.batchCap {
		end := start + c.batchCap
		if end > len(ids) {
			end = len(ids)
		}

		req := workItemsBatchRequest{
			IDs:         ids[start:end],
			Fields:      fields,
			ErrorPolicy: "omit",
		}
		var resp workItemsBatchResponse
		if err := c.doJSON(ctx, c.httpClient, http.MethodPost, c.apiURL("wit/workitemsbatch", nil), "application/json", req, &resp); err != nil {
			return nil, fmt.Errorf("work items batch: %w", err)
		}
		for _, wire := range resp.Value {
			items = append(items, workItemFromWire(wire))
		}
	}
	return items, nil
}

// GetWorkItem fetches a single work item.
func (c *Client) GetWorkItem(ctx context.Context, id int) (WorkItem, error) {
	var wire wireWorkItem
	if err := c.doJSON(ctx, c.httpClient, http.MethodGet, c.apiURL(fmt.Sprintf("wit/workitems/%d", id), nil), "", nil, &wire); err != nil {
		return WorkItem{}, fmt.Errorf("get work item %d: %w", id, err)
	}
	return workItemFromWire(wire), nil
}

// GetRevisions fetches the full revision history of a work item, oldest
// first. An item with no revisions yields an empty slice, not an error.
func (c *Client) GetRevisions(ctx context.Context, id int) ([]Revision, error) {
	var resp revisionsResponse
	if err := c.doJSON(ctx, c.revisionClient, http.MethodGet, c.apiURL(fmt.Sprintf("wit/workitems/%d/revisions", id), nil), "", nil, &resp); err != nil {
		return nil, fmt.Errorf("get revisions for %d: %w", id, err)
	}
	return resp.Value, nil
}

// UpdateWorkItem applies JSON-Patch operations to a work item and returns
// the updated item.
func (c *Client) UpdateWorkItem(ctx context.Context, id int, ops []PatchOp) (WorkItem, error) {
	if len(ops) == 0 {
		return WorkItem{}, fmt.Errorf("update work item %d: no operations", id)
	}
	var wire wireWorkItem
	if err := c.doJSON(ctx, c.httpClient, http.MethodPatch, c.apiURL(fmt.Sprintf("wit/workitems/%d", id), nil), "application/json-patch+json", ops, &wire); err != nil {
		return WorkItem{}, fmt.Errorf("update work item %d: %w", id, err)
	}
	return workItemFromWire(wire), nil
}

// doJSON issues one request with bounded exponential-backoff retries.
// Only 429 and 5xx responses are retried; everything else, including
// transport errors, surfaces immediately.
func (c *Client) doJSON(ctx context.Context, hc *http.Client, method, u, contentType string, body, out any) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	delay := c.retryBaseDelay
	var lastErr error
	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			logging.Warn("retrying upstream call",
				"method", method,
				"attempt", attempt+1,
				"delay", delay.String(),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(reqBody))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+c.pat)))
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := hc.Do(req)
		if err != nil {
			return fmt.Errorf("send request: %w", err)
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("unmarshal response: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 512)}
			continue
		default:
			return &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 512)}
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", c.retryAttempts, lastErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// EscapeWIQL escapes a string literal for interpolation into a WIQL query.
func EscapeWIQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
