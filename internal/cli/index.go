package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/indexgraph/codegraph/internal/config"
	"github.com/indexgraph/codegraph/internal/embed"
	"github.com/indexgraph/codegraph/internal/indexer"
	"github.com/indexgraph/codegraph/internal/parse"
	"github.com/indexgraph/codegraph/internal/store"
)

var (
	indexProject string
	indexCollect string
	indexClear   bool
	indexClearAll bool
	indexForce   bool
)

// indexCmd runs the C9 pipeline once over a project:
// `index --project P --collection C [--clear | --clear-all] [--verbose] [--force]`.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a project's source tree into a vector store collection",
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexProject, "project", ".", "project root to index")
	indexCmd.Flags().StringVar(&indexCollect, "collection", "chunks", "vector store collection name")
	indexCmd.Flags().BoolVar(&indexClear, "clear", false, "erase non-manual points before reindexing")
	indexCmd.Flags().BoolVar(&indexClearAll, "clear-all", false, "erase every point, including manual records, before reindexing")
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "re-embed every file regardless of change detection")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	projectRoot, err := filepath.Abs(indexProject)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(projectRoot)
	if err != nil {
		log.Error().Err(err).Msg("config load failed")
		os.Exit(2)
	}

	provider, err := embed.NewProvider(embed.Config{
		Provider: cfg.Embedding.Provider,
		Model:    cfg.Embedding.Model,
		APIKey:   cfg.Embedding.APIKey,
		Endpoint: cfg.Embedding.Endpoint,
	})
	if err != nil {
		log.Error().Err(err).Msg("embedding provider setup failed")
		os.Exit(2)
	}
	defer provider.Close()

	adapter, err := store.NewAt(cfg.Store.URL)
	if err != nil {
		log.Error().Err(err).Msg("vector store setup failed")
		os.Exit(2)
	}

	coordinator := embed.NewCoordinator(provider, &embed.CostAccumulator{Provider: cfg.Embedding.Provider, Model: cfg.Embedding.Model})
	orch := indexer.New(parse.Default(), adapter, coordinator, provider.Dimensions(), "cosine")

	mode := indexer.ModeIncremental
	if indexForce {
		mode = indexer.ModeFull
	}
	if indexClear || indexClearAll {
		mode = indexer.ModeClear
	}

	log.Info().Str("project", projectRoot).Str("collection", indexCollect).Str("mode", string(mode)).Msg("starting index run")

	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(65*time.Millisecond),
	)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				spinner.Add(1)
				time.Sleep(100 * time.Millisecond)
			}
		}
	}()

	ctx := context.Background()
	summary, runErr := orch.Run(ctx, indexer.Options{
		ProjectRoot: projectRoot,
		Collection:  indexCollect,
		Mode:        mode,
		Force:       indexForce,
		ClearAll:    indexClearAll,
		Includes:    cfg.Paths.Include,
		Excludes:    cfg.Paths.Exclude,
	})
	close(done)
	spinner.Finish()
	fmt.Println()

	if summary != nil {
		fmt.Print(summary.String())
	}

	switch {
	case runErr == nil:
		return nil
	case summary != nil && len(summary.Failures) > 0:
		// Partial failure: some files failed, run otherwise completed.
		os.Exit(1)
		return nil
	default:
		log.Error().Err(runErr).Msg("index run failed")
		os.Exit(2)
		return nil
	}
}
