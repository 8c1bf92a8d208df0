// Command quoted runs the routing engine's HTTP server: it loads
// configuration, wires every ports.* collaborator (demo in-memory
// implementations plus the Redis-backed route cache), and serves the
// §4.1 Pipeline.Quote behind gorilla/mux, the same construction order the
// teacher's own main.go follows (config.Init, then store, then router,
// then mux.Router, then http.Server).
package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"dex-aggregator/internal/aggregator"
	"dex-aggregator/internal/cache"
	"dex-aggregator/internal/config"
	"dex-aggregator/internal/httpapi"
	"dex-aggregator/internal/mocks"
	"dex-aggregator/internal/orchestrator"
	"dex-aggregator/internal/reqctx"
	"dex-aggregator/internal/validate"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/nats-io/nats.go"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfg := config.AppConfig

	log.Println("Starting routing engine...")

	metrics := reqctx.NewPromMetrics()

	validator := validate.New(cfg.Chains.Supported)
	tokens := mocks.NewTokens()
	chains := mocks.NewChains()
	routes := mocks.NewRoutes()
	fetcher := mocks.NewQuoteFetcher()
	gasEstimator := mocks.NewGas()
	simulator := mocks.NewSimulator()
	poolDetails := mocks.NewPoolDetails(routes)

	cached := newCachedRoutesRepository(cfg)

	pipeline := orchestrator.New(
		orchestrator.Config{
			PercentageStep: cfg.Engine.PercentageStep,
			SplitConfig: aggregator.SplitConfig{
				MaxSplits:           cfg.Engine.MaxSplits,
				MaxSplitRoutes:      cfg.Engine.MaxSplitRoutes,
				RouteSplitTimeoutMs: cfg.Engine.RouteSplitTimeoutMs,
			},
			TopNCandidates:     cfg.Engine.TopNCandidates,
			MaxRoutesPerBucket: cfg.Engine.MaxRoutesPerBucket,
			TopNFromCache:      cfg.Engine.TopNFromCache,
			SimulationEnabled:  cfg.Simulation.Enabled,
			GasConcurrency:     cfg.Engine.GasConcurrency,
		},
		validator,
		tokens,
		chains,
		routes,
		cached,
		fetcher,
		gasEstimator,
		gasEstimator,
		simulator,
		poolDetails,
	)

	handler := httpapi.New(pipeline, cached, metrics)

	r := mux.NewRouter()
	handler.Routes(r)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html>
	<head><title>Routing Engine</title></head>
	<body>
		<h1>Quote Routing Engine</h1>
		<ul>
			<li>POST /quote</li>
			<li>GET /cached-routes</li>
			<li>DELETE /cached-routes</li>
			<li>GET /health</li>
		</ul>
	</body>
</html>`)
	})

	port := ":" + cfg.Server.Port
	log.Printf("HTTP server starting on http://localhost%s", port)

	server := &http.Server{
		Addr:         port,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	log.Fatal(server.ListenAndServe())
}

// newCachedRoutesRepository builds the §4.6 Redis-backed bucketed cache,
// wiring the optional NATS publisher when NATS.URL is configured. Redis
// connectivity is not probed here — a down Redis surfaces as per-request
// cache-read/write failures, which the pipeline already treats as misses
// (§7), not as a startup failure.
func newCachedRoutesRepository(cfg *config.Config) *cache.RoutesRepository {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	var publisher *nats.Conn
	if cfg.NATS.URL != "" {
		conn, err := nats.Connect(cfg.NATS.URL)
		if err != nil {
			log.Printf("Warning: failed to connect to NATS at %s: %v. Cache-write notifications disabled.", cfg.NATS.URL, err)
		} else {
			publisher = conn
		}
	}

	return cache.NewRoutesRepository(client, cfg.Engine.MaxRoutesPerBucket, cfg.Engine.TopNFromCache, nil, publisher)
}
