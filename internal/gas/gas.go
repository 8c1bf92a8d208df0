// Package gas fans per-quote gas estimation and gas-to-quote-token
// conversion out across a batch of quotes (§2's "Gas estimator + converter"
// component). It owns no pricing logic of its own — that lives behind the
// ports.GasEstimateProvider / ports.GasConverter collaborators — only the
// concurrent orchestration around them.
package gas

import (
	"context"
	"sync"

	"dex-aggregator/internal/ports"
	"dex-aggregator/internal/types"
)

// defaultConcurrency bounds how many EstimateGas calls run at once, mirroring
// the teacher's calculatePathsConcurrently semaphore width.
const defaultConcurrency = 8

// Attacher orchestrates gas estimation + conversion for a batch of quotes.
type Attacher struct {
	Provider    ports.GasEstimateProvider
	Converter   ports.GasConverter
	Concurrency int
}

// New builds an Attacher. A zero/negative concurrency falls back to
// defaultConcurrency.
func New(provider ports.GasEstimateProvider, converter ports.GasConverter, concurrency int) *Attacher {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Attacher{Provider: provider, Converter: converter, Concurrency: concurrency}
}

// Attach estimates gas for every quote concurrently (teacher's
// WaitGroup + buffered-channel-semaphore idiom from
// calculatePathsConcurrently, generalized from path-search fan-out to
// gas-estimation fan-out), then converts the result into quote-token units.
// Per-quote estimation failures degrade gracefully: that quote's
// GasDetails stays nil and is treated as zero cost downstream (§7). Converter
// failures are swallowed the same way; only a failure to read the shared gas
// price is returned as an error.
func (a *Attacher) Attach(ctx context.Context, chainID int64, inToken, quoteToken *types.Token, tradeType types.TradeType, quotes []*types.QuoteBasic, l2Data *ports.L2GasData) error {
	if len(quotes) == 0 {
		return nil
	}

	gasPriceWei, err := a.Provider.GetCurrentGasPrice(ctx, chainID)
	if err != nil {
		return err
	}

	sem := make(chan struct{}, a.Concurrency)
	var wg sync.WaitGroup

	for _, q := range quotes {
		wg.Add(1)
		sem <- struct{}{}
		go func(quote *types.QuoteBasic) {
			defer wg.Done()
			defer func() { <-sem }()

			details, estErr := a.Provider.EstimateGas(ctx, inToken, quoteToken, quote.Amount, chainID, tradeType, quote, &gasPriceWei, l2Data)
			if estErr != nil {
				return
			}
			quote.GasDetails = details
		}(q)
	}
	wg.Wait()

	// §7: gas conversion failures degrade gracefully rather than failing the
	// request — affected quotes simply keep GasCostInQuoteToken nil/zero and
	// the selector falls back to raw-amount ranking (§4.4).
	prefetched, err := a.Converter.PrefetchGasPools(ctx, chainID, quoteToken)
	if err != nil {
		return nil
	}
	_ = a.Converter.UpdateQuotesGasDetails(ctx, chainID, quoteToken, quotes, prefetched)
	return nil
}
