package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/nguyentranbao-ct/catalog-browser/internal/codec"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/logger"
)

type Origin string

const (
	// OriginProgrammatic marks URL writes made by the controller itself.
	OriginProgrammatic Origin = "programmatic"
	OriginNavigation   Origin = "navigation"
)

type URLChange struct {
	Query  string `json:"query"`
	Origin Origin `json:"origin"`
}

// FilterController owns the current filter and keeps it in step with the
// URL. Edits flow filter to URL; navigation flows URL to filter. Its own URL
// writes come back tagged programmatic and are ignored.
type FilterController interface {
	Filter() models.FilterState
	Query() string
	Load(ctx context.Context, query string) models.FilterState
	SetFilter(ctx context.Context, patch models.FilterPatch) (models.FilterState, error)
	Navigate(ctx context.Context, change URLChange) (models.FilterState, bool)
	Refresh(ctx context.Context)
	Clear(ctx context.Context) models.FilterState
}

type ControllerOption func(*filterController)

// WithDispatch replaces the goroutine that runs each fetch. Dispatchers may
// run fetches in any order.
func WithDispatch(dispatch func(func())) ControllerOption {
	return func(c *filterController) { c.dispatch = dispatch }
}

type filterController struct {
	codec     codec.Codec
	facade    QueryFacade
	navigator Navigator
	dispatch  func(func())

	mu     sync.Mutex
	filter models.FilterState
}

func NewFilterController(c codec.Codec, facade QueryFacade, navigator Navigator, opts ...ControllerOption) FilterController {
	fc := &filterController{
		codec:     c,
		facade:    facade,
		navigator: navigator,
		dispatch:  func(fn func()) { go fn() },
		filter:    c.Defaults(),
	}
	for _, opt := range opts {
		opt(fc)
	}
	return fc
}

func (c *filterController) Filter() models.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *filterController) Query() string {
	return c.codec.Encode(c.Filter())
}

// Load adopts the URL present at mount and fetches it.
func (c *filterController) Load(ctx context.Context, query string) models.FilterState {
	f := c.decode(ctx, query)

	c.mu.Lock()
	c.filter = f
	t := c.facade.Begin(f)
	c.mu.Unlock()

	c.run(ctx, t)
	return f
}

func (c *filterController) SetFilter(ctx context.Context, patch models.FilterPatch) (models.FilterState, error) {
	if patch.IsEmpty() {
		return c.Filter(), nil
	}

	c.mu.Lock()
	cur := c.filter
	next := cur.Apply(patch)
	if err := next.Validate(); err != nil {
		c.mu.Unlock()
		return cur, err
	}
	if next.Equal(cur) {
		c.mu.Unlock()
		return cur, nil
	}
	c.filter = next
	t := c.facade.Begin(next)
	c.mu.Unlock()

	if c.navigator != nil {
		c.navigator.Replace(ctx, URLChange{Query: c.codec.Encode(next), Origin: OriginProgrammatic})
	}
	c.run(ctx, t)
	return next, nil
}

// Navigate reports whether the change was adopted. The URL is not rewritten.
func (c *filterController) Navigate(ctx context.Context, change URLChange) (models.FilterState, bool) {
	if change.Origin == OriginProgrammatic {
		return c.Filter(), false
	}
	f := c.decode(ctx, change.Query)

	c.mu.Lock()
	if f.Equal(c.filter) {
		c.mu.Unlock()
		return f, false
	}
	c.filter = f
	t := c.facade.Begin(f)
	c.mu.Unlock()

	c.run(ctx, t)
	return f, true
}

func (c *filterController) Refresh(ctx context.Context) {
	c.mu.Lock()
	t := c.facade.Begin(c.filter)
	c.mu.Unlock()

	c.run(ctx, t)
}

// Clear drops every filter and returns to the first page.
func (c *filterController) Clear(ctx context.Context) models.FilterState {
	def := c.codec.Defaults()

	c.mu.Lock()
	def.PageSize = c.filter.PageSize
	if def.Equal(c.filter) {
		c.mu.Unlock()
		return def
	}
	c.filter = def
	t := c.facade.Begin(def)
	c.mu.Unlock()

	if c.navigator != nil {
		c.navigator.Replace(ctx, URLChange{Query: c.codec.Encode(def), Origin: OriginProgrammatic})
	}
	c.run(ctx, t)
	return def
}

func (c *filterController) decode(ctx context.Context, query string) models.FilterState {
	f, warnings := c.codec.DecodeWithWarnings(query)
	if len(warnings) > 0 {
		logger.Debugw(ctx, "normalized filter query", "query", query, "warnings", warnings)
	}
	return f
}

// run hands a ticket reserved under c.mu to the dispatcher. Reserving before
// dispatch keeps generations in issue order however the dispatcher schedules.
func (c *filterController) run(ctx context.Context, t FetchTicket) {
	f := t.Filter
	c.dispatch(func() {
		_, err := c.facade.Run(ctx, t)
		switch {
		case err == nil:
		case errors.Is(err, models.ErrSuperseded):
			logger.Debugw(ctx, "fetch superseded", "query", c.codec.Encode(f))
		default:
			logger.Debugw(ctx, "fetch failed", "query", c.codec.Encode(f), "error", err)
		}
	})
}
