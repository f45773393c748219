// Package dirsync keeps the family record table and the external contact
// directory consistent in both directions. Push fully replaces a directory
// entry from a record; pull diffs hand-edited entries back into the table.
package dirsync

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"takaful/pkg/types"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Directory is the external contact-directory surface. There is no indexed
// search: List returns everything and callers scan. Both engines bound the
// scan to once per run.
type Directory interface {
	List(ctx context.Context) ([]types.DirectoryEntry, error)
	Create(ctx context.Context, entry types.DirectoryEntry) error
	Delete(ctx context.Context, resourceID string) error
}

type HTTPDirectory struct {
	httpClient *resty.Client
	logger     *logrus.Logger
}

func NewHTTPDirectory(baseURL, apiKey string, logger *logrus.Logger) *HTTPDirectory {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(3 * time.Second).
		SetRetryAfter(func(c *resty.Client, r *resty.Response) (time.Duration, error) {
			return time.Duration(r.Request.Attempt) * time.Second, nil
		}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil
		}).
		SetAuthToken(apiKey).
		SetHeader("Accept", "application/json")

	return &HTTPDirectory{httpClient: httpClient, logger: logger}
}

type listResponse struct {
	Error    string                 `json:"error"`
	Contacts []types.DirectoryEntry `json:"contacts"`
}

func (d *HTTPDirectory) List(ctx context.Context) ([]types.DirectoryEntry, error) {
	var out listResponse
	resp, err := d.httpClient.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/contacts")
	if err != nil {
		return nil, fmt.Errorf("list contacts failed: %w", err)
	}
	if resp.IsError() {
		return nil, &types.ExternalServiceError{
			Service:    "directory",
			StatusCode: resp.StatusCode(),
			Message:    resp.String(),
		}
	}
	if out.Error != "" {
		return nil, &types.ExternalServiceError{
			Service:    "directory",
			StatusCode: resp.StatusCode(),
			Message:    out.Error,
		}
	}
	return out.Contacts, nil
}

func (d *HTTPDirectory) Create(ctx context.Context, entry types.DirectoryEntry) error {
	resp, err := d.httpClient.R().
		SetContext(ctx).
		SetBody(entry).
		Post("/contacts")
	if err != nil {
		return fmt.Errorf("create contact failed: %w", err)
	}
	if resp.IsError() {
		return &types.ExternalServiceError{
			Service:    "directory",
			StatusCode: resp.StatusCode(),
			Message:    resp.String(),
		}
	}
	return nil
}

func (d *HTTPDirectory) Delete(ctx context.Context, resourceID string) error {
	resp, err := d.httpClient.R().
		SetContext(ctx).
		Delete("/contacts/" + resourceID)
	if err != nil {
		return fmt.Errorf("delete contact failed: %w", err)
	}
	if resp.IsError() {
		return &types.ExternalServiceError{
			Service:    "directory",
			StatusCode: resp.StatusCode(),
			Message:    resp.String(),
		}
	}
	return nil
}

// MemoryDirectory is an in-process Directory used in tests.
type MemoryDirectory struct {
	mu      sync.Mutex
	nextID  int
	Entries map[string]types.DirectoryEntry
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{Entries: map[string]types.DirectoryEntry{}}
}

func (m *MemoryDirectory) List(ctx context.Context) ([]types.DirectoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.DirectoryEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e)
	}
	return out, nil
}

func (m *MemoryDirectory) Create(ctx context.Context, entry types.DirectoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	entry.ResourceID = "c" + strconv.Itoa(m.nextID)
	m.Entries[entry.ResourceID] = entry
	return nil
}

func (m *MemoryDirectory) Delete(ctx context.Context, resourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Entries[resourceID]; !ok {
		return types.ErrDirectoryNotFound
	}
	delete(m.Entries, resourceID)
	return nil
}
