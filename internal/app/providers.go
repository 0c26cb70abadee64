package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentranbao-ct/catalog-browser/internal/config"
	"github.com/nguyentranbao-ct/catalog-browser/internal/kafka"
	"github.com/nguyentranbao-ct/catalog-browser/internal/repo/auth"
	"github.com/nguyentranbao-ct/catalog-browser/internal/repo/graphql"
	"github.com/nguyentranbao-ct/catalog-browser/internal/repo/mongodb"
	"github.com/nguyentranbao-ct/catalog-browser/internal/repo/restapi"
	"github.com/nguyentranbao-ct/catalog-browser/internal/selector"
	"github.com/nguyentranbao-ct/catalog-browser/internal/usecase"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/util"
	"go.uber.org/fx"
)

func newTokenSource(cfg *config.Config) auth.TokenSource {
	return auth.NewTokenSource(cfg.Auth.BearerToken)
}

func newRESTClient(cfg *config.Config, tokens auth.TokenSource) restapi.Client {
	rc := util.NewRestyClient(util.RestyOptions{
		BaseURL:    cfg.Catalog.RESTBaseURL,
		Timeout:    cfg.Catalog.Timeout,
		RetryCount: cfg.Catalog.RetryCount,
	})
	return restapi.NewClient(rc, tokens)
}

func newGraphQLClient(cfg *config.Config, tokens auth.TokenSource) graphql.Client {
	rc := util.NewRestyClient(util.RestyOptions{
		Timeout:    cfg.Catalog.Timeout,
		RetryCount: cfg.Catalog.RetryCount,
	})
	return graphql.NewClient(rc, cfg.Catalog.GraphQLURL, tokens)
}

func newTransports(rest restapi.Client, gql graphql.Client) []usecase.Transport {
	return []usecase.Transport{rest, gql}
}

func newPolicy(cfg *config.Config) (selector.Policy, error) {
	return selector.NewPolicy(cfg.Catalog.TransportPolicy)
}

// newMongoDB returns nil when activity persistence is disabled.
func newMongoDB(lc fx.Lifecycle, cfg *config.Config) (*mongodb.DB, error) {
	if !cfg.Database.Enabled {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := mongodb.NewConnection(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init mongo client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close(ctx)
		},
	})
	return db, nil
}

func newActivityStore(lc fx.Lifecycle, db *mongodb.DB) usecase.ActivityStore {
	if db == nil {
		return nil
	}
	repo := mongodb.NewBrowseActivityRepository(db)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return repo.EnsureIndexes(ctx)
		},
	})
	return repo
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config) (kafka.Publisher, error) {
	pub, err := kafka.NewPublisher(cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("init kafka publisher: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	})
	return pub, nil
}

// newActivityRecorder drains pending writes on stop. Its hook is appended
// after the sinks' hooks, so it runs before they close.
func newActivityRecorder(lc fx.Lifecycle, store usecase.ActivityStore, pub kafka.Publisher) usecase.BrowseActivityRecorder {
	r := usecase.NewActivityRecorder(store, pub)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			r.Wait()
			return nil
		},
	})
	return r
}

func newCategoryUsecase(lc fx.Lifecycle, cfg *config.Config, rest restapi.Client) usecase.CategoryUsecase {
	u := usecase.NewCategoryUsecase(rest, cfg.Catalog.CategoryTTL)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Catalog.Timeout)
				defer cancel()
				u.Prefetch(ctx)
			}()
			return nil
		},
	})
	return u
}
