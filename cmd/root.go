package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/nguyentranbao-ct/catalog-browser/internal/app"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
	"github.com/nguyentranbao-ct/catalog-browser/internal/server"
	"github.com/nguyentranbao-ct/catalog-browser/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

var rootCmd = &cobra.Command{
	Use:           "catalog-browser",
	Short:         "Product catalog browsing service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	Run: func(cmd *cobra.Command, args []string) {
		app.Invoke(server.StartServer).Run()
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse [query]",
	Short: "Fetch one catalog page for a filter query string",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

var withCategories bool

func init() {
	browseCmd.Flags().BoolVar(&withCategories, "categories", false, "include the category list")
	rootCmd.AddCommand(serveCmd, browseCmd)
}

type browseOutput struct {
	*usecase.BrowseResult
	Categories []models.Category `json:"categories,omitempty"`
}

func runBrowse(cmd *cobra.Command, args []string) error {
	var (
		catalog    usecase.CatalogUsecase
		categories usecase.CategoryUsecase
	)
	fxApp := app.New(fx.Populate(&catalog, &categories))
	if err := fxApp.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = fxApp.Stop(stopCtx)
	}()

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	var out browseOutput
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		res, err := catalog.Browse(ctx, query)
		out.BrowseResult = res
		return err
	})
	if withCategories {
		g.Go(func() error {
			list, err := categories.List(ctx)
			out.Categories = list
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
