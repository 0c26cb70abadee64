package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nguyentranbao-ct/catalog-browser/internal/codec"
	"github.com/nguyentranbao-ct/catalog-browser/internal/config"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/nguyentranbao-ct/catalog-browser/internal/selector"
)

// BrowseSession is one live view: its own controller and facade, so
// generation fencing is per viewer.
type BrowseSession struct {
	ID         string
	Facade     QueryFacade
	Controller FilterController
}

type BrowseResult struct {
	Query  string              `json:"query"`
	Filter models.FilterState  `json:"filter"`
	Page   *models.CatalogPage `json:"page"`
	Window PageWindow          `json:"window"`
	// HasActiveFilters drives the "clear filters" control.
	HasActiveFilters bool `json:"has_active_filters"`
	Empty            bool `json:"empty"`
}

type CatalogUsecase interface {
	Codec() codec.Codec
	NewSession(navigator Navigator, opts ...ControllerOption) (*BrowseSession, error)
	// Browse runs a single query through a fresh facade.
	Browse(ctx context.Context, query string) (*BrowseResult, error)
}

type catalogUsecase struct {
	codec            codec.Codec
	policy           selector.Policy
	transports       []Transport
	recorder         ActivityRecorder
	cancelSuperseded bool
}

func NewCatalogUsecase(
	cfg *config.Config,
	policy selector.Policy,
	transports []Transport,
	recorder ActivityRecorder,
) CatalogUsecase {
	return &catalogUsecase{
		codec:            codec.NewForProfile(cfg.Catalog.Profile),
		policy:           policy,
		transports:       transports,
		recorder:         recorder,
		cancelSuperseded: cfg.Catalog.CancelSuperseded,
	}
}

func (u *catalogUsecase) Codec() codec.Codec {
	return u.codec
}

func (u *catalogUsecase) newFacade(sessionID string) (QueryFacade, error) {
	opts := []FacadeOption{
		WithSessionID(sessionID),
		WithCodec(u.codec),
		WithActivityRecorder(u.recorder),
	}
	if u.cancelSuperseded {
		opts = append(opts, WithCancelSuperseded())
	}
	return NewQueryFacade(u.policy, u.transports, opts...)
}

func (u *catalogUsecase) NewSession(navigator Navigator, opts ...ControllerOption) (*BrowseSession, error) {
	id := uuid.NewString()
	facade, err := u.newFacade(id)
	if err != nil {
		return nil, fmt.Errorf("new query facade: %w", err)
	}
	return &BrowseSession{
		ID:         id,
		Facade:     facade,
		Controller: NewFilterController(u.codec, facade, navigator, opts...),
	}, nil
}

func (u *catalogUsecase) Browse(ctx context.Context, query string) (*BrowseResult, error) {
	facade, err := u.newFacade(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("new query facade: %w", err)
	}

	f := u.codec.Decode(query)
	page, err := facade.FetchPage(ctx, f)
	if err != nil {
		return nil, err
	}
	return &BrowseResult{
		Query:  u.codec.Encode(f),
		Filter: f,
		Page:   page,
		Window: NewPageWindow(page),

		HasActiveFilters: f.HasActiveFilters(),
		Empty:            page.IsEmpty(),
	}, nil
}
