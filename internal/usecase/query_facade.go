package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nguyentranbao-ct/catalog-browser/internal/codec"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/nguyentranbao-ct/catalog-browser/internal/normalizer"
	"github.com/nguyentranbao-ct/catalog-browser/internal/selector"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/logger"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
)

type QueryStatus string

const (
	StatusIdle    QueryStatus = "idle"
	StatusLoading QueryStatus = "loading"
	StatusSuccess QueryStatus = "success"
	StatusError   QueryStatus = "error"
)

// QueryState is a snapshot of the facade. Page is whatever is on display;
// PageFilter is the filter that produced it, which may differ from Filter
// while a newer request is loading.
type QueryState struct {
	Status     QueryStatus         `json:"status"`
	Generation uint64              `json:"generation"`
	Filter     models.FilterState  `json:"filter"`
	Page       *models.CatalogPage `json:"page,omitempty"`
	PageFilter models.FilterState  `json:"page_filter"`
	Error      *models.QueryError  `json:"error,omitempty"`
	// Stale is set when a refetch of the same filter failed and the previous
	// page was kept.
	Stale bool `json:"stale"`
}

// Current reports whether Page was produced by the requested filter.
func (s QueryState) Current() bool {
	return s.Page != nil && s.PageFilter.Equal(s.Filter)
}

// FetchTicket is a reserved generation. Issue order is the order of Begin
// calls, not of Run calls.
type FetchTicket struct {
	Generation uint64
	Filter     models.FilterState
	Transport  models.Transport
}

type QueryFacade interface {
	// FetchPage is Run(ctx, Begin(f)).
	FetchPage(ctx context.Context, f models.FilterState) (*models.CatalogPage, error)
	// Begin reserves the next generation for f and publishes the loading
	// state. It does not block on the transport.
	Begin(f models.FilterState) FetchTicket
	// Run performs the fetch for t. It returns models.ErrSuperseded when a
	// newer ticket was issued before this one completed; its result is
	// dropped. A ticket already superseded when Run starts never reaches the
	// transport.
	Run(ctx context.Context, t FetchTicket) (*models.CatalogPage, error)
	State() QueryState
	// Subscribe delivers the latest state. Slow readers only miss
	// intermediate states, never the last one.
	Subscribe() (<-chan QueryState, func())
	SessionID() string
}

type FacadeOption func(*queryFacade)

// WithCancelSuperseded cancels the context of an in-flight request as soon
// as a newer one is issued.
func WithCancelSuperseded() FacadeOption {
	return func(q *queryFacade) { q.cancelSuperseded = true }
}

func WithActivityRecorder(r ActivityRecorder) FacadeOption {
	return func(q *queryFacade) { q.recorder = r }
}

func WithSessionID(id string) FacadeOption {
	return func(q *queryFacade) { q.sessionID = id }
}

func WithCodec(c codec.Codec) FacadeOption {
	return func(q *queryFacade) { q.codec = c }
}

type queryFacade struct {
	policy     selector.Policy
	transports map[models.Transport]Transport
	metrics    *prometheus.HistogramVec

	recorder         ActivityRecorder
	codec            codec.Codec
	sessionID        string
	cancelSuperseded bool

	mu          sync.Mutex
	generation  uint64
	state       QueryState
	cancel      context.CancelFunc
	subscribers map[int]chan QueryState
	nextSubID   int
}

func NewQueryFacade(policy selector.Policy, transports []Transport, opts ...FacadeOption) (QueryFacade, error) {
	metrics, err := util.GetHistogramVec("catalog_transport_request_duration_seconds", "transport", "outcome")
	if err != nil {
		return nil, fmt.Errorf("get histogram vec: %w", err)
	}

	q := &queryFacade{
		policy:      policy,
		transports:  make(map[models.Transport]Transport, len(transports)),
		metrics:     metrics,
		codec:       codec.New(models.BrowsePageSize),
		state:       QueryState{Status: StatusIdle},
		subscribers: map[int]chan QueryState{},
	}
	for _, t := range transports {
		q.transports[t.Name()] = t
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

func (q *queryFacade) SessionID() string {
	return q.sessionID
}

func (q *queryFacade) FetchPage(ctx context.Context, f models.FilterState) (*models.CatalogPage, error) {
	return q.Run(ctx, q.Begin(f))
}

func (q *queryFacade) Begin(f models.FilterState) FetchTicket {
	source := q.policy.Select(f)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.generation++
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.state.Status = StatusLoading
	q.state.Generation = q.generation
	q.state.Filter = f
	q.state.Error = nil
	q.publishLocked()
	return FetchTicket{Generation: q.generation, Filter: f, Transport: source}
}

func (q *queryFacade) Run(ctx context.Context, t FetchTicket) (*models.CatalogPage, error) {
	gen, source, f := t.Generation, t.Transport, t.Filter

	q.mu.Lock()
	if gen != q.generation {
		q.mu.Unlock()
		logger.Debugw(ctx, "skipping superseded fetch", "generation", gen, "transport", source)
		return nil, models.ErrSuperseded
	}
	if q.cancelSuperseded {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		q.cancel = cancel
		defer cancel()
	}
	q.mu.Unlock()

	start := time.Now()
	page, err := q.fetch(ctx, source, f)
	elapsed := time.Since(start)

	q.mu.Lock()
	if gen != q.generation {
		q.mu.Unlock()
		q.metrics.WithLabelValues(source.String(), "superseded").Observe(elapsed.Seconds())
		logger.Debugw(ctx, "dropping superseded result", "generation", gen, "transport", source)
		return nil, models.ErrSuperseded
	}
	q.cancel = nil

	var qerr *models.QueryError
	if err != nil {
		qerr = models.NewQueryError(source, err)
		q.state.Status = StatusError
		q.state.Error = qerr
		if q.state.Page != nil && q.state.PageFilter.Equal(f) {
			q.state.Stale = true
		} else {
			q.state.Page = nil
			q.state.PageFilter = models.FilterState{}
			q.state.Stale = false
		}
	} else {
		q.state.Status = StatusSuccess
		q.state.Page = page
		q.state.PageFilter = f
		q.state.Stale = false
	}
	q.publishLocked()
	q.mu.Unlock()

	q.settle(ctx, gen, source, f, page, qerr, elapsed)
	if qerr != nil {
		return nil, qerr
	}
	return page, nil
}

func (q *queryFacade) fetch(ctx context.Context, source models.Transport, f models.FilterState) (*models.CatalogPage, error) {
	t, ok := q.transports[source]
	if !ok {
		return nil, &models.TransportError{Transport: source, Message: "transport not configured"}
	}
	raw, err := t.FetchProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	page, err := normalizer.Normalize(raw, source, f)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (q *queryFacade) settle(
	ctx context.Context,
	gen uint64,
	source models.Transport,
	f models.FilterState,
	page *models.CatalogPage,
	qerr *models.QueryError,
	elapsed time.Duration,
) {
	activity := &models.BrowseActivity{
		SessionID:  q.sessionID,
		Generation: gen,
		Query:      q.codec.Encode(f),
		Transport:  source,
		DurationMs: elapsed.Milliseconds(),
		ExecutedAt: time.Now(),
	}

	if qerr != nil {
		activity.Outcome = models.BrowseOutcomeError
		activity.ErrorKind = qerr.Kind
		q.metrics.WithLabelValues(source.String(), "error").Observe(elapsed.Seconds())

		var ne *models.NormalizationError
		if errors.As(qerr, &ne) {
			logger.Errorw(ctx, "unexpected catalog response shape", "transport", source, "reason", ne.Reason)
		} else {
			logger.Warnw(ctx, "catalog fetch failed", "transport", source, "status", qerr.StatusCode, "error", qerr.Message)
		}
	} else {
		activity.Outcome = models.BrowseOutcomeSuccess
		activity.ItemCount = len(page.Items)
		q.metrics.WithLabelValues(source.String(), "success").Observe(elapsed.Seconds())
	}

	if q.recorder != nil {
		q.recorder.Record(ctx, activity)
	}
}

func (q *queryFacade) State() QueryState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *queryFacade) Subscribe() (<-chan QueryState, func()) {
	ch := make(chan QueryState, 1)

	q.mu.Lock()
	id := q.nextSubID
	q.nextSubID++
	q.subscribers[id] = ch
	ch <- q.state
	q.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			q.mu.Lock()
			delete(q.subscribers, id)
			q.mu.Unlock()
			close(ch)
		})
	}
}

// publishLocked replaces any undelivered state with the current one.
func (q *queryFacade) publishLocked() {
	for _, ch := range q.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- q.state:
		default:
		}
	}
}
