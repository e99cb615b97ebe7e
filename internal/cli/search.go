package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/indexgraph/codegraph/internal/config"
	"github.com/indexgraph/codegraph/internal/embed"
	"github.com/indexgraph/codegraph/internal/store"
)

var (
	searchProject string
	searchCollect string
	searchQuery   string
	searchType    string
	searchLimit   int
)

// searchCmd runs `search --project P --collection C --query Q
// [--type entity|relation|chunk]`, delegating to C8's nearest-neighbor Query
// plus an optional payload-type filter.
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a nearest-neighbor search against an indexed collection",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchProject, "project", ".", "project root the collection was indexed from")
	searchCmd.Flags().StringVar(&searchCollect, "collection", "chunks", "vector store collection name")
	searchCmd.Flags().StringVar(&searchQuery, "query", "", "search query text")
	searchCmd.Flags().StringVar(&searchType, "type", "", "restrict results to a point type: entity, relation, or chunk")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	searchCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	projectRoot, err := filepath.Abs(searchProject)
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
	if err := adapter.EnsureCollection(searchCollect, provider.Dimensions(), "cosine"); err != nil {
		log.Error().Err(err).Msg("ensure collection failed")
		os.Exit(2)
	}

	ctx := context.Background()
	vectors, err := provider.Embed(ctx, []string{searchQuery}, embed.EmbedModeQuery)
	if err != nil {
		log.Error().Err(err).Msg("query embedding failed")
		os.Exit(2)
	}

	var filter store.Filter
	switch searchType {
	case "":
	case "entity":
		// Entities are stored as their metadata chunks.
		filter = store.Filter{"type": "chunk", "chunk_type": "metadata"}
	default:
		filter = store.Filter{"type": searchType}
	}

	results, err := adapter.Query(ctx, searchCollect, vectors[0], searchLimit, filter)
	if err != nil {
		log.Error().Err(err).Msg("query failed")
		os.Exit(2)
	}

	for _, pt := range results {
		fmt.Printf("%s  [%v]  %v\n", pt.ID, pt.Payload["type"], pt.Payload["entity_name"])
		if content, ok := pt.Payload["content"]; ok {
			fmt.Printf("    %v\n", content)
		}
	}
	return nil
}
