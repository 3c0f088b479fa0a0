package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/ericfisherdev/actionpanel/internal/domain/model"
	"github.com/ericfisherdev/actionpanel/internal/domain/port/driven"
)

// ErrInvalidPage is returned by setters given a non-positive page or size.
var ErrInvalidPage = errors.New("page number and page size must be positive")

// ActionLister is the part of driven.ActionAPI the list controller needs.
type ActionLister interface {
	ListActions(ctx context.Context, q model.PageQuery) (model.PageResult[model.ActionItem], error)
}

// StaleRecorder counts fetch results discarded because a newer fetch was issued.
type StaleRecorder interface {
	StaleResponseDiscarded()
}

// ListSnapshot is a consistent copy of the controller's visible state.
// Stale is set only on the value returned by a Refetch whose own result was
// discarded; it then describes the state left by the newer fetch.
type ListSnapshot struct {
	Query   model.PageQuery
	Result  model.PageResult[model.ActionItem]
	Loading bool
	Err     error
	Stale   bool
}

// ListControllerOption configures a ListController.
type ListControllerOption func(*ListController)

// WithStaleRecorder reports discarded responses to r.
func WithStaleRecorder(r StaleRecorder) ListControllerOption {
	return func(c *ListController) { c.stale = r }
}

// ListController holds the paginated, searchable query for action categories
// and the latest visible result. Every Refetch takes a sequence number before
// calling the API; a result is applied only if no later fetch has been issued
// since, so visible state always reflects the most recently issued fetch. The
// lock is never held across the network call.
type ListController struct {
	lister ActionLister
	prefs  driven.PreferenceStore
	stale  StaleRecorder

	mu      sync.Mutex
	query   model.PageQuery
	result  model.PageResult[model.ActionItem]
	loading bool
	err     error
	issued  uint64
}

// NewListController creates a controller on page 1 with the given page size.
// prefs may be nil, in which case page size changes are not remembered.
func NewListController(lister ActionLister, prefs driven.PreferenceStore, pageSize int, opts ...ListControllerOption) *ListController {
	c := &ListController{
		lister: lister,
		prefs:  prefs,
		query:  model.NewPageQuery(pageSize),
		result: model.EmptyPage[model.ActionItem](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadPreferences applies the remembered page size, if any.
func (c *ListController) LoadPreferences(ctx context.Context) error {
	if c.prefs == nil {
		return nil
	}
	raw, err := c.prefs.GetPreference(ctx, model.PreferencePageSize)
	if err != nil {
		return fmt.Errorf("load page size preference: %w", err)
	}
	if raw == "" {
		return nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size <= 0 {
		slog.Warn("ignoring invalid page size preference", "value", raw)
		return nil
	}

	c.mu.Lock()
	c.query = c.query.WithPageSize(size)
	c.mu.Unlock()
	return nil
}

// Query returns the current query.
func (c *ListController) Query() model.PageQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Snapshot returns the current visible state.
func (c *ListController) Snapshot() ListSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetPage moves to page n without fetching.
func (c *ListController) SetPage(n int) error {
	if n < 1 {
		return fmt.Errorf("set page %d: %w", n, ErrInvalidPage)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = c.query.WithPage(n)
	return nil
}

// SetPageSize changes the page size and resets to page 1 without fetching.
// The size is remembered when a preference store is configured; a failure to
// remember it is logged and does not fail the call.
func (c *ListController) SetPageSize(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("set page size %d: %w", n, ErrInvalidPage)
	}
	c.mu.Lock()
	c.query = c.query.WithPageSize(n)
	c.mu.Unlock()

	if c.prefs != nil {
		if err := c.prefs.SetPreference(ctx, model.PreferencePageSize, strconv.Itoa(n)); err != nil {
			slog.Warn("failed to remember page size", "page_size", n, "error", err)
		}
	}
	return nil
}

// SetSearchTerm changes the search term and resets to page 1. It takes effect
// on the next Refetch.
func (c *ListController) SetSearchTerm(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = c.query.WithSearchTerm(s)
}

// Apply moves the controller to q. A change of page size or search term
// resets to page 1 and the requested page number is ignored. Non-positive
// sizes and pages keep their current values.
func (c *ListController) Apply(ctx context.Context, q model.PageQuery) error {
	current := c.Query()
	reshaped := false

	if q.PageSize > 0 && q.PageSize != current.PageSize {
		if err := c.SetPageSize(ctx, q.PageSize); err != nil {
			return err
		}
		reshaped = true
	}
	if strings.TrimSpace(q.SearchTerm) != current.SearchTerm {
		c.SetSearchTerm(q.SearchTerm)
		reshaped = true
	}
	if !reshaped && q.PageNumber >= 1 {
		return c.SetPage(q.PageNumber)
	}
	return nil
}

// Refetch fetches the page for the current query. If a later Refetch was
// issued before this one completes, this result is discarded, visible state is
// left to the later fetch, and the returned snapshot has Stale set with a nil
// error. Otherwise the result replaces the visible state. On error the visible
// list is cleared and the error is returned. Refetch never retries.
func (c *ListController) Refetch(ctx context.Context) (ListSnapshot, error) {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	q := c.query
	c.loading = true
	c.mu.Unlock()

	result, err := c.lister.ListActions(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.issued {
		slog.Debug("discarding stale list response", "seq", seq, "latest", c.issued)
		if c.stale != nil {
			c.stale.StaleResponseDiscarded()
		}
		snap := c.snapshotLocked()
		snap.Stale = true
		return snap, nil
	}

	c.loading = false
	if err != nil {
		c.result = model.EmptyPage[model.ActionItem]()
		c.err = err
		return c.snapshotLocked(), fmt.Errorf("list actions: %w", err)
	}

	if result.Items == nil {
		result.Items = []model.ActionItem{}
	}
	c.result = result
	c.err = nil
	return c.snapshotLocked(), nil
}

func (c *ListController) snapshotLocked() ListSnapshot {
	return ListSnapshot{
		Query:   c.query,
		Result:  c.result,
		Loading: c.loading,
		Err:     c.err,
	}
}
