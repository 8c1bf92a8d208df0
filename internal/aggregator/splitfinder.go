package aggregator

import (
	"container/heap"
	"math/big"
	"sort"
	"time"

	"dex-aggregator/internal/types"
)

// defaultBucketTopK is the fallback branch cap per percentage bucket when
// SplitConfig.MaxSplitRoutes is unset, keeping branching factor bounded the
// way the teacher's PathFinder caps fan-out per hop rather than exploring
// every edge.
const defaultBucketTopK = 3

// SplitConfig bounds the best-split search (§4.5).
type SplitConfig struct {
	MaxSplits           int // max number of routes in a single split
	MaxSplitRoutes      int // branch cap: candidate quotes explored per percentage step
	RouteSplitTimeoutMs int
}

// splitNode is one partial combination on the search frontier: the quotes
// chosen so far, the pools they've claimed, the percentage still needed to
// reach 100, and the running amount used to prioritize the frontier.
type splitNode struct {
	quotes    []*types.QuoteBasic
	usedPools map[string]bool
	remaining int
	amount    *big.Int
}

type splitHeap struct {
	nodes    []*splitNode
	maxFirst bool
}

func (h splitHeap) Len() int { return len(h.nodes) }
func (h splitHeap) Less(i, j int) bool {
	cmp := h.nodes[i].amount.Cmp(h.nodes[j].amount)
	if h.maxFirst {
		return cmp > 0
	}
	return cmp < 0
}
func (h splitHeap) Swap(i, j int)       { h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i] }
func (h *splitHeap) Push(x interface{}) { h.nodes = append(h.nodes, x.(*splitNode)) }
func (h *splitHeap) Pop() interface{} {
	old := h.nodes
	n := len(old)
	node := old[n-1]
	h.nodes = old[:n-1]
	return node
}

// FindBestSplits runs a best-first search (container/heap, generalizing the
// teacher's PathFinder.FindBestPaths) over percentage-bucketed quotes,
// looking for combinations of routes whose percentages sum to exactly 100
// with no pool reused across routes, up to cfg.MaxSplits routes per
// combination and cfg.MaxSplitRoutes candidates per percentage step.
// Completed combinations are returned ranked via SelectBest; the caller
// applies its own top-N cut.
//
// quotes must already carry gas details where applicable; this function
// does no fetching or gas conversion, only combinatorial search and
// ranking.
func FindBestSplits(quotes []*types.QuoteBasic, tradeType types.TradeType, cfg SplitConfig) []*types.QuoteSplit {
	if cfg.MaxSplits <= 0 {
		cfg.MaxSplits = 1
	}
	if cfg.MaxSplitRoutes <= 0 {
		cfg.MaxSplitRoutes = defaultBucketTopK
	}
	timeout := time.Duration(cfg.RouteSplitTimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	deadline := time.Now().Add(timeout)

	buckets := bucketByPercentage(quotes, tradeType, cfg.MaxSplitRoutes)

	maxFirst := tradeType != types.ExactOut
	frontier := &splitHeap{maxFirst: maxFirst}
	heap.Init(frontier)
	heap.Push(frontier, &splitNode{remaining: 100, amount: big.NewInt(0), usedPools: map[string]bool{}})

	var completed []*types.QuoteSplit

	// The deadline bounds the whole search: whatever combinations completed
	// before it elapsed are what gets ranked. Without the hard bound, a
	// search space where no combination reaches exactly 100% would drain an
	// exponential frontier.
	for frontier.Len() > 0 && time.Now().Before(deadline) {
		node := heap.Pop(frontier).(*splitNode)

		if node.remaining == 0 {
			if len(node.quotes) > 0 {
				completed = append(completed, &types.QuoteSplit{Quotes: append([]*types.QuoteBasic{}, node.quotes...)})
			}
			continue
		}
		if len(node.quotes) >= cfg.MaxSplits {
			continue
		}

		for pct, bucket := range buckets {
			if pct > node.remaining {
				continue
			}
			for _, q := range bucket {
				if routeCollides(node.usedPools, q.Route) {
					continue
				}
				child := extendNode(node, q, pct)
				heap.Push(frontier, child)
			}
		}
	}

	return SelectBest(completed, tradeType, 0)
}

func extendNode(node *splitNode, q *types.QuoteBasic, pct int) *splitNode {
	usedPools := make(map[string]bool, len(node.usedPools)+len(q.Route.Path))
	for k := range node.usedPools {
		usedPools[k] = true
	}
	for _, addr := range q.Route.PoolAddressSequence() {
		usedPools[addr] = true
	}

	amount := new(big.Int).Add(node.amount, q.Amount)

	return &splitNode{
		quotes:    append(append([]*types.QuoteBasic{}, node.quotes...), q),
		usedPools: usedPools,
		remaining: node.remaining - pct,
		amount:    amount,
	}
}

func routeCollides(usedPools map[string]bool, r *types.Route) bool {
	for _, addr := range r.PoolAddressSequence() {
		if usedPools[addr] {
			return true
		}
	}
	return false
}

// bucketByPercentage groups quotes by their route's percentage tag, sorted
// best-first within each bucket (desc amount for EXACT_IN, asc for
// EXACT_OUT) and truncated to topK candidates.
func bucketByPercentage(quotes []*types.QuoteBasic, tradeType types.TradeType, topK int) map[int][]*types.QuoteBasic {
	buckets := make(map[int][]*types.QuoteBasic)
	for _, q := range quotes {
		if q.Route == nil {
			continue
		}
		buckets[q.Route.Percentage] = append(buckets[q.Route.Percentage], q)
	}
	ascending := tradeType == types.ExactOut
	for pct, bucket := range buckets {
		sort.Slice(bucket, func(i, j int) bool {
			cmp := bucket[i].Amount.Cmp(bucket[j].Amount)
			if ascending {
				return cmp < 0
			}
			return cmp > 0
		})
		if len(bucket) > topK {
			bucket = bucket[:topK]
		}
		buckets[pct] = bucket
	}
	return buckets
}
