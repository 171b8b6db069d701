package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	appseason "pocketpoker/internal/app/season"
	"pocketpoker/internal/config"
	"pocketpoker/internal/events"
	"pocketpoker/internal/logging"
	"pocketpoker/internal/mcpserver"
	"pocketpoker/internal/money"
	"pocketpoker/internal/notify"
	"pocketpoker/internal/ratelimit"
	domain "pocketpoker/internal/season"
	"pocketpoker/internal/settlement"
	"pocketpoker/internal/store"
	httptransport "pocketpoker/internal/transport/http"
	"pocketpoker/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg.Server); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

type app struct {
	server *http.Server
	store  store.Store
	hub    *events.Hub
	notify *notify.Manager
}

func (a *app) close() {
	a.hub.Close()
	a.store.Close()
}

// build wires every component from cfg without starting any listener.
func build(ctx context.Context, cfg config.ServerConfig, clock quartz.Clock) (*app, error) {
	st, err := store.Open(ctx, store.Options{
		Backend:       cfg.StoreBackend,
		PostgresDSN:   cfg.PostgresDSN,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}

	policy, err := settlement.ParsePolicy(cfg.SettlementPolicy)
	if err != nil {
		st.Close()
		return nil, err
	}
	prizePolicy, err := settlement.ParseContributionPolicy(cfg.PrizePolicy)
	if err != nil {
		st.Close()
		return nil, err
	}
	limiter, err := ratelimit.New(cfg.SoftLimitPerMin, cfg.LimiterCacheSize, clock)
	if err != nil {
		st.Close()
		return nil, err
	}
	notifyCfg, err := notify.ConfigFromServer(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	hub := events.NewHub(cfg.EventBufferSize, clock)
	notifier := notify.NewManager(notifyCfg, notify.WithClock(clock))
	defaults := domain.DraftDefaults{
		BuyInAmount: money.FromFloat(cfg.DefaultBuyIn),
		PrizeAmount: money.FromFloat(cfg.DefaultPrize),
	}
	seasons := appseason.NewService(st, appseason.Config{
		DefaultSeasonID: cfg.DefaultSeasonID,
		Defaults:        defaults,
		AuditMax:        cfg.AuditMax,
		AllowAnyUnlock:  cfg.AllowAnyUnlock,
		Location:        domain.LoadLocation(cfg.LockTimezone),
		Policy:          policy,
		PrizePolicy:     prizePolicy,
	},
		appseason.WithClock(clock),
		appseason.WithLimiter(limiter),
		appseason.WithPublisher(hub),
		appseason.WithNotifier(notifier),
	)

	r := httptransport.NewRouter(httptransport.Deps{
		Config:  cfg,
		Seasons: seasons,
		Store:   st,
		Hub:     hub,
		WS:      ws.NewServer(hub, cfg.DefaultSeasonID, clock).HandleWS,
		MCP:     mcpserver.New(seasons, defaults).Handler(),
	})
	httptransport.LogRoutes(r)

	return &app{
		server: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		store:  st,
		hub:    hub,
		notify: notifier,
	}, nil
}

func run(ctx context.Context, cfg config.ServerConfig) error {
	a, err := build(ctx, cfg, quartz.NewReal())
	if err != nil {
		return err
	}
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.notify.Start(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreBackend).Msg("http listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("http shutting down")
		return a.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
