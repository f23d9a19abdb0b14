package table

import (
	"context"
	"slices"
	"strings"
	"sync"

	apperrors "github.com/glefebvre/mediadesk/internal/errors"
	"github.com/glefebvre/mediadesk/internal/filter"
	"github.com/glefebvre/mediadesk/internal/logger"
)

const (
	DefaultPageFloor       = 50
	DefaultFilePageFloor   = 100
	DefaultPageIncrement   = 50
	DefaultScrollThreshold = 20
)

// Viewport is the view hosting a table. ScrollToTop is called whenever the
// page size is reset by a filter or sort change.
type Viewport interface {
	ScrollToTop()
}

// ViewportFunc adapts a function to the Viewport interface
type ViewportFunc func()

func (f ViewportFunc) ScrollToTop() { f() }

// Options tune paging for a controller. Zero values fall back to defaults.
type Options struct {
	PageFloor       int
	PageIncrement   int
	ScrollThreshold int
	Viewport        Viewport
	Logger          *logger.Logger
}

// Less orders two items ascending
type Less[T any] func(a, b T) int

// Definition describes one entity table
type Definition[T any] struct {
	Name        string
	Fetch       func(ctx context.Context) ([]T, error)
	Label       func(T) string
	Facets      func(T) []string
	SortKeys    map[string]Less[T]
	DefaultSort string
}

// Controller holds one fetched list and the view state applied to it. It is
// safe for concurrent use; concurrent Loads keep the last response.
type Controller[T any] struct {
	def  Definition[T]
	opts Options
	log  *logger.Logger

	mu       sync.Mutex
	items    []T
	facets   []string
	search   string
	facet    string
	sortKey  string
	desc     bool
	pageSize int
	armed    bool
	// document height at the last increment
	grownAt int
}

// New creates a controller for def. The list is empty until Load.
func New[T any](def Definition[T], opts Options) *Controller[T] {
	if opts.PageFloor <= 0 {
		opts.PageFloor = DefaultPageFloor
	}
	if opts.PageIncrement <= 0 {
		opts.PageIncrement = DefaultPageIncrement
	}
	if opts.ScrollThreshold <= 0 {
		opts.ScrollThreshold = DefaultScrollThreshold
	}
	log := opts.Logger
	if log == nil {
		log = logger.AppLogger()
	}
	return &Controller[T]{
		def:      def,
		opts:     opts,
		log:      log,
		items:    []T{},
		facets:   []string{},
		sortKey:  def.DefaultSort,
		pageSize: opts.PageFloor,
		armed:    true,
	}
}

// Name returns the table name used in logs and routes
func (c *Controller[T]) Name() string {
	return c.def.Name
}

// Load fetches the full list and derives the facets. On failure the list is
// left empty and the error is returned for logging; nothing is retried.
func (c *Controller[T]) Load(ctx context.Context) error {
	ctx = logger.ContextWithController(ctx, c.def.Name)
	items, err := c.def.Fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pageSize = c.opts.PageFloor
	c.armed = true
	c.grownAt = 0

	if err != nil {
		c.items = []T{}
		c.facets = []string{}
		c.log.WithFields(map[string]interface{}{
			"table": c.def.Name,
		}).ErrorContext(ctx, "failed to load table", err)
		return err
	}

	if items == nil {
		items = []T{}
	}
	c.items = items
	if c.def.Facets != nil {
		c.facets = filter.Facets(items, c.def.Facets)
	} else {
		c.facets = []string{}
	}

	c.log.WithFields(map[string]interface{}{
		"table": c.def.Name,
		"count": len(items),
	}).DebugContext(ctx, "table loaded")
	return nil
}

// RemoveFunc drops the loaded items for which del returns true, without
// fetching, and returns how many were removed.
func (c *Controller[T]) RemoveFunc(del func(T) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := len(c.items)
	c.items = slices.DeleteFunc(slices.Clone(c.items), del)
	if c.def.Facets != nil {
		c.facets = filter.Facets(c.items, c.def.Facets)
	}
	return before - len(c.items)
}

// Items returns every loaded item, unfiltered
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Facets returns the distinct facet values in first-seen order
func (c *Controller[T]) Facets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.facets)
}

// HasFacet reports whether the table offers a facet filter
func (c *Controller[T]) HasFacet() bool {
	return c.def.Facets != nil
}

// SortKeys lists the accepted sort fields
func (c *Controller[T]) SortKeys() []string {
	keys := make([]string, 0, len(c.def.SortKeys))
	for k := range c.def.SortKeys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SetSearch changes the text filter
func (c *Controller[T]) SetSearch(text string) {
	c.mu.Lock()
	changed := c.search != text
	c.search = text
	c.mu.Unlock()
	if changed {
		c.reset()
	}
}

// SetFacet changes the facet filter; "" clears it
func (c *Controller[T]) SetFacet(facet string) {
	c.mu.Lock()
	changed := c.facet != facet
	c.facet = facet
	c.mu.Unlock()
	if changed {
		c.reset()
	}
}

// SortBy sorts by field ascending, or flips the direction when field is
// already the sort key.
func (c *Controller[T]) SortBy(field string) error {
	if _, ok := c.def.SortKeys[field]; !ok {
		return apperrors.ValidationError("unknown sort field").
			WithContext("table", c.def.Name).
			WithContext("field", field)
	}
	c.mu.Lock()
	if c.sortKey == field {
		c.desc = !c.desc
	} else {
		c.sortKey = field
		c.desc = false
	}
	c.mu.Unlock()
	c.reset()
	return nil
}

// SetOrder applies an order value such as "title" or "-title"
func (c *Controller[T]) SetOrder(order string) error {
	field, desc := strings.TrimPrefix(order, "-"), strings.HasPrefix(order, "-")
	if _, ok := c.def.SortKeys[field]; !ok {
		return apperrors.ValidationError("unknown sort field").
			WithContext("table", c.def.Name).
			WithContext("field", field)
	}
	c.mu.Lock()
	changed := c.sortKey != field || c.desc != desc
	c.sortKey, c.desc = field, desc
	c.mu.Unlock()
	if changed {
		c.reset()
	}
	return nil
}

// Reverse flips the current sort direction
func (c *Controller[T]) Reverse() {
	c.mu.Lock()
	c.desc = !c.desc
	c.mu.Unlock()
	c.reset()
}

// OrderValue returns the sort key, prefixed with "-" when descending
func (c *Controller[T]) OrderValue() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.orderValue()
}

func (c *Controller[T]) orderValue() string {
	if c.desc {
		return "-" + c.sortKey
	}
	return c.sortKey
}

// OnScroll grows the page by one increment when the bottom of the view comes
// within the threshold. It grows once per crossing: the view has to leave the
// threshold zone, or the document has to get taller, before the next
// increment. It reports whether the page grew.
func (c *Controller[T]) OnScroll(scrollY, viewportHeight, documentHeight int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	atBottom := scrollY+viewportHeight >= documentHeight-c.opts.ScrollThreshold
	if !atBottom {
		c.armed = true
		return false
	}
	if !c.armed && documentHeight <= c.grownAt {
		return false
	}
	c.armed = false
	c.grownAt = documentHeight
	c.pageSize += c.opts.PageIncrement
	return true
}

// PageSize returns the current number of displayed rows
func (c *Controller[T]) PageSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageSize
}

// Visible returns the filtered, sorted first page
func (c *Controller[T]) Visible() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := c.matching()
	if len(rows) > c.pageSize {
		rows = rows[:c.pageSize]
	}
	return rows
}

// Matches returns the number of items passing the filters
func (c *Controller[T]) Matches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	crit := filter.New(c.search, c.facet)
	n := 0
	for _, item := range c.items {
		if c.accept(crit, item) {
			n++
		}
	}
	return n
}

// View is a snapshot of a table's state, as rendered by the hosts
type View[T any] struct {
	Name     string   `json:"name"`
	Rows     []T      `json:"rows"`
	Total    int      `json:"total"`
	Matches  int      `json:"matches"`
	PageSize int      `json:"page_size"`
	HasMore  bool     `json:"has_more"`
	Search   string   `json:"search"`
	Facet    string   `json:"facet"`
	Facets   []string `json:"facets"`
	Order    string   `json:"order"`
}

// Snapshot returns the current view under a single lock
func (c *Controller[T]) Snapshot() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := c.matching()
	matches := len(rows)
	if len(rows) > c.pageSize {
		rows = rows[:c.pageSize]
	}
	return View[T]{
		Name:     c.def.Name,
		Rows:     rows,
		Total:    len(c.items),
		Matches:  matches,
		PageSize: c.pageSize,
		HasMore:  matches > len(rows),
		Search:   c.search,
		Facet:    c.facet,
		Facets:   slices.Clone(c.facets),
		Order:    c.orderValue(),
	}
}

func (c *Controller[T]) reset() {
	c.mu.Lock()
	c.pageSize = c.opts.PageFloor
	c.armed = true
	c.grownAt = 0
	c.mu.Unlock()

	if c.opts.Viewport != nil {
		c.opts.Viewport.ScrollToTop()
	}
}

func (c *Controller[T]) accept(crit filter.Criteria, item T) bool {
	var facets []string
	if c.def.Facets != nil {
		facets = c.def.Facets(item)
	}
	return crit.Matches(c.def.Label(item), facets)
}

// matching filters then sorts; callers hold mu
func (c *Controller[T]) matching() []T {
	crit := filter.New(c.search, c.facet)
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if c.accept(crit, item) {
			out = append(out, item)
		}
	}

	less, ok := c.def.SortKeys[c.sortKey]
	if !ok {
		return out
	}
	if c.desc {
		slices.SortStableFunc(out, func(a, b T) int { return less(b, a) })
	} else {
		slices.SortStableFunc(out, less)
	}
	return out
}
