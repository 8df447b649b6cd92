// Package retrieval runs a query vector through an ordered list of search
// tiers and stops at the first tier that finds anything.
package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/akolanti/DocQA/internal/config"
	"github.com/akolanti/DocQA/internal/domain/commonModels"
	"github.com/akolanti/DocQA/internal/metrics"
	"github.com/akolanti/DocQA/internal/rag/vectorDB"
	"github.com/akolanti/DocQA/pkg/logger_i"
)

type Engine struct {
	search vectorDB.SearchBackend
	tiers  []commonModels.Tier
	logger *logger_i.Logger
}

// DefaultTiers: unfiltered top 8, then top 12 above 0.3, then top 20 above 0.2.
func DefaultTiers() []commonModels.Tier {
	two, three := config.TierTwoThreshold, config.TierThreeThreshold
	return []commonModels.Tier{
		{TopK: config.TierOneTopK},
		{TopK: config.TierTwoTopK, Threshold: &two},
		{TopK: config.TierThreeTopK, Threshold: &three},
	}
}

// NewEngine uses DefaultTiers when no tiers are given.
func NewEngine(search vectorDB.SearchBackend, tiers ...commonModels.Tier) *Engine {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	return &Engine{search: search, tiers: tiers, logger: logger_i.NewLogger("Retrieval")}
}

// Retrieve tries the tiers strictly in order. An empty result with a nil
// error means no tier matched; a backend error ends the search at once.
func (e *Engine) Retrieve(ctx context.Context, queryEmbedding []float32) ([]commonModels.QueryMatch, error) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	for i, tier := range e.tiers {
		matches, err := e.search.NearestNeighbors(ctx, queryEmbedding, tier.TopK, tier.Threshold)
		if err != nil {
			log.Error("Search backend failed", "tier", i+1, "error", err)
			return nil, fmt.Errorf("retrieval tier %d: %w", i+1, err)
		}
		if len(matches) > 0 {
			log.Debug("Tier matched", "tier", i+1, "matches", len(matches))
			metrics.CaptureRetrievalTier(strconv.Itoa(i + 1))
			return matches, nil
		}
	}

	log.Info("No tier returned matches")
	metrics.CaptureRetrievalTier("none")
	return []commonModels.QueryMatch{}, nil
}
