package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"upsell-widget-engine/internal/api"
	"upsell-widget-engine/internal/campaign"
	"upsell-widget-engine/internal/client"
	"upsell-widget-engine/internal/config"
	"upsell-widget-engine/internal/engine"
	"upsell-widget-engine/internal/listener"
	"upsell-widget-engine/internal/namecache"
	"upsell-widget-engine/internal/render"
	"upsell-widget-engine/internal/storage"
)

// CampaignSource loads the active campaign set.
type CampaignSource interface {
	LoadActiveCampaigns(ctx context.Context) ([]campaign.Campaign, error)
}

// Server owns the in-memory campaign cache and keeps it fresh.
type Server struct {
	store    CampaignSource
	cache    *storage.Cache
	interval time.Duration

	// optional extra work per refresh (catalog snapshot rebuild)
	extraRefresh func(context.Context) error
}

func New(store CampaignSource, cache *storage.Cache) *Server {
	return &Server{store: store, cache: cache, interval: time.Minute}
}

func (s *Server) refresh(ctx context.Context) error {
	campaigns, err := s.store.LoadActiveCampaigns(ctx)
	if err != nil {
		return err
	}
	s.cache.UpdateCampaigns(campaigns)
	if s.extraRefresh != nil {
		return s.extraRefresh(ctx)
	}
	return nil
}

// StartCacheRefresher refreshes immediately, then on every tick until ctx
// is done.
func (s *Server) StartCacheRefresher(ctx context.Context) {
	go func() {
		if err := s.refresh(ctx); err != nil {
			log.Error().Err(err).Msg("initial campaign refresh")
		}
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.refresh(ctx); err != nil {
					log.Error().Err(err).Msg("campaign refresh")
				}
			}
		}
	}()
}

// Run wires storage, caches, engine and HTTP together and blocks until a
// shutdown signal.
func Run(cfg config.Config) {
	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	store, err := storage.New(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init storage")
	}
	defer store.Close()

	// Name-resolution cache over the configured provider
	var provider namecache.Provider = store
	if cfg.Provider.Kind == "http" {
		provider = client.NewCatalog(cfg.Provider.BaseURL, cfg.Provider.Token, cfg.ProviderTimeout())
	}
	names := namecache.New(provider, clock.New(), namecache.WithTTL(cfg.CacheTTL()))

	// Selection engine
	eng := engine.New(func(v float64) string {
		return render.FormatPrice(cfg.Widget.CurrencySymbol, v)
	})
	if err := eng.BuildSnapshot(rootCtx, store); err != nil {
		log.Fatal().Err(err).Msg("initial snapshot build")
	}

	// Campaign cache + refresher
	campaignCache := storage.NewCache()
	srv := New(store, campaignCache)
	srv.interval = cfg.RefreshInterval()
	srv.extraRefresh = func(ctx context.Context) error {
		return eng.BuildSnapshot(ctx, store)
	}
	srv.StartCacheRefresher(rootCtx)

	// HTTP
	h := api.NewHandler(names, campaignCache, eng)
	r := api.Router(h, cfg.Admin.Nonce)

	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Listener (LISTEN/NOTIFY)
	go listener.ListenAndRefresh(rootCtx, store, srv.refresh, cfg.Listener.Channel, cfg.Backoff())

	// Server goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("http server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	// Wait for signal
	waitForSignal()
	log.Info().Msg("shutdown...")

	// Graceful shutdown
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	cancel() // stop background goroutines
	_ = httpSrv.Shutdown(shCtx)
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
