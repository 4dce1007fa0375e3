package gallery

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultBatchSize is the number of projects fetched per load.
const DefaultBatchSize = 9

// State is the controller's display state.
type State string

const (
	StateLoading   State = "loading"
	StatePopulated State = "populated"
	StateEmpty     State = "empty"
	StateError     State = "error"
)

// Request is one listing page request.
type Request struct {
	Shop     string
	Search   string
	Category string
	Sort     string
	Page     int
	PerPage  int
}

// Page is one listing page response.
type Page struct {
	Projects   []Project
	Total      int
	Page       int
	PerPage    int
	TotalPages int
}

// Fetcher loads listing pages.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*Page, error)
}

// Config is the per-page configuration of a gallery widget.
type Config struct {
	BaseURL   string
	Shop      string
	BatchSize int
}

// View is a consistent copy of the controller state for rendering.
type View struct {
	State       State
	Projects    []Project
	Total       int
	HasMore     bool
	CanLoadLess bool
	Category    string
	Sort        string
	Search      string
	Err         error
}

// Controller drives one gallery widget. Every filter change starts a new generation;
// responses that arrive for an older generation are discarded.
type Controller struct {
	mu      sync.Mutex
	cfg     Config
	fetcher Fetcher
	logger  *zap.Logger

	state      State
	projects   []Project
	total      int
	category   string
	sort       string
	search     string
	err        error
	generation uint64
	loadingAt  int
}

// NewController creates a controller. BatchSize defaults to DefaultBatchSize.
func NewController(cfg Config, fetcher Fetcher, logger *zap.Logger) *Controller {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{cfg: cfg, fetcher: fetcher, logger: logger, state: StateLoading}
}

// Load fetches the first batch with the current filters.
func (c *Controller) Load(ctx context.Context) error {
	return c.reset(ctx, func() {})
}

// SetCategory filters by category; "" and "all" show everything.
func (c *Controller) SetCategory(ctx context.Context, category string) error {
	return c.reset(ctx, func() { c.category = strings.TrimSpace(category) })
}

// SetSort changes the ordering shorthand (newest, oldest, az, za, popular).
func (c *Controller) SetSort(ctx context.Context, sort string) error {
	return c.reset(ctx, func() { c.sort = strings.TrimSpace(sort) })
}

// SetSearch changes the free-text search.
func (c *Controller) SetSearch(ctx context.Context, search string) error {
	return c.reset(ctx, func() { c.search = strings.TrimSpace(search) })
}

func (c *Controller) reset(ctx context.Context, mutate func()) error {
	c.mu.Lock()
	mutate()
	c.generation++
	gen := c.generation
	c.state = StateLoading
	c.err = nil
	c.loadingAt = 1
	req := c.requestLocked(1)
	c.mu.Unlock()

	page, err := c.fetcher.Fetch(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("discarding stale gallery response", zap.Uint64("generation", gen))
		return nil
	}
	c.loadingAt = 0
	if err != nil {
		c.state = StateError
		c.err = err
		c.projects = nil
		c.total = 0
		return err
	}
	c.projects = append([]Project(nil), page.Projects...)
	c.total = page.Total
	c.settleLocked()
	return nil
}

// LoadMore appends the next batch. It is a no-op while a load is in flight or when
// everything is displayed.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.loadingAt != 0 || len(c.projects) >= c.total {
		c.mu.Unlock()
		return nil
	}
	gen := c.generation
	next := len(c.projects)/c.cfg.BatchSize + 1
	c.loadingAt = next
	req := c.requestLocked(next)
	c.mu.Unlock()

	page, err := c.fetcher.Fetch(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return nil
	}
	c.loadingAt = 0
	if err != nil {
		c.err = err
		return err
	}
	keep := (next - 1) * c.cfg.BatchSize
	if keep > len(c.projects) {
		keep = len(c.projects)
	}
	c.projects = append(c.projects[:keep], page.Projects...)
	c.total = page.Total
	c.settleLocked()
	return nil
}

// LoadLess drops the last batch, never going below the first one.
func (c *Controller) LoadLess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loadingAt != 0 || len(c.projects) <= c.cfg.BatchSize {
		return
	}
	keep := ((len(c.projects) - 1) / c.cfg.BatchSize) * c.cfg.BatchSize
	c.projects = c.projects[:keep]
}

// View returns a copy of the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		State:       c.state,
		Projects:    append([]Project(nil), c.projects...),
		Total:       c.total,
		HasMore:     len(c.projects) < c.total,
		CanLoadLess: len(c.projects) > c.cfg.BatchSize,
		Category:    c.category,
		Sort:        c.sort,
		Search:      c.search,
		Err:         c.err,
	}
}

func (c *Controller) settleLocked() {
	if len(c.projects) == 0 {
		c.state = StateEmpty
		return
	}
	c.state = StatePopulated
}

func (c *Controller) requestLocked(page int) Request {
	return Request{
		Shop:     c.cfg.Shop,
		Search:   c.search,
		Category: c.category,
		Sort:     c.sort,
		Page:     page,
		PerPage:  c.cfg.BatchSize,
	}
}
