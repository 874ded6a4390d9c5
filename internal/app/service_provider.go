package app

import (
	"context"
	feedAPI "minigames_backend/internal/api/feed"
	gameAPI "minigames_backend/internal/api/game"
	"minigames_backend/internal/config"
	"minigames_backend/internal/config/env"
	"minigames_backend/internal/middleware"
	"minigames_backend/internal/repository"
	"minigames_backend/internal/repository/settlement_repo"
	"minigames_backend/internal/repository/stats_repo"
	"minigames_backend/internal/repository/wallet_repo"
	"minigames_backend/internal/service"
	"minigames_backend/internal/service/ascent"
	"minigames_backend/internal/service/feed"
	"minigames_backend/internal/service/ledger"
	"minigames_backend/internal/service/outcome"
	"minigames_backend/internal/service/registry"
	"minigames_backend/internal/service/wallet"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type ServiceProvider struct {
	//TXManager
	txManager trm.Manager

	// Configs
	runtimeCfg config.RuntimeConfig
	gameCfg    config.GameConfig
	jwtCfg     config.JWTConfig

	// Database
	pgConfig config.PGConfig
	dbClient *pgxpool.Pool

	// Redis
	redisCfg    config.RedisConfig
	redisClient redis.UniversalClient
	redisPub    *feed.RedisPublisher

	// Wallet and ledger bits
	walletRepo     repository.WalletRepository
	settlementRepo repository.SettlementRepository
	statsRepo      repository.StatsRepository
	walletServ     service.WalletService
	ledgerServ     service.LedgerService

	// Game bits
	generator *outcome.Generator
	clock     *ascent.Clock
	broker    *feed.Broker
	registry  *registry.Registry
	gameHand  *gameAPI.Handler
	feedHand  *feedAPI.Handler

	// Router and HTTP config
	httpCfg config.HTTPConfig
	router  chi.Router
}

func newServiceProvider() *ServiceProvider {
	return &ServiceProvider{}
}

func (sp *ServiceProvider) RuntimeCfg() config.RuntimeConfig {
	if sp.runtimeCfg == nil {
		cfg, err := env.NewRuntimeConfig()
		if err != nil {
			panic("failed to get runtime config: " + err.Error())
		}
		sp.runtimeCfg = cfg
	}
	return sp.runtimeCfg
}

func (sp *ServiceProvider) GameCfg() config.GameConfig {
	if sp.gameCfg == nil {
		cfg, err := env.NewGameConfigFromYAML(sp.RuntimeCfg().GameConfigPath())
		if err != nil {
			panic("failed to get game config: " + err.Error())
		}
		sp.gameCfg = cfg
	}
	return sp.gameCfg
}

func (sp *ServiceProvider) JWTCfg() config.JWTConfig {
	if sp.jwtCfg == nil {
		cfg, err := env.NewJWTConfig()
		if err != nil {
			panic("failed to get jwt config: " + err.Error())
		}
		sp.jwtCfg = cfg
	}
	return sp.jwtCfg
}

func (sp *ServiceProvider) PgConfig() config.PGConfig {
	if sp.pgConfig == nil {
		cfg, err := env.NewPGConfig()
		if err != nil {
			panic("failed to get database config: " + err.Error())
		}
		sp.pgConfig = cfg
	}
	return sp.pgConfig
}

// persistent true - кошельки и журнал живут в postgres
func (sp *ServiceProvider) persistent() bool {
	return sp.PgConfig().DSN() != ""
}

func (sp *ServiceProvider) DBClient(ctx context.Context) *pgxpool.Pool {
	if sp.dbClient == nil {
		dbc, err := pgxpool.New(ctx, sp.PgConfig().DSN())
		if err != nil {
			panic("failed to create db pool: " + err.Error())
		}
		err = dbc.Ping(ctx)
		if err != nil {
			panic("failed to ping db: " + err.Error())
		}
		sp.dbClient = dbc
	}
	return sp.dbClient
}

func (sp *ServiceProvider) TXManager(ctx context.Context) trm.Manager {
	if sp.txManager == nil {
		if !sp.persistent() {
			sp.txManager = service.NewNoopTxManager()
			return sp.txManager
		}

		m, err := manager.New(trmpgx.NewDefaultFactory(sp.DBClient(ctx)))
		if err != nil {
			panic("failed to create tx manager: " + err.Error())
		}

		sp.txManager = m
	}

	return sp.txManager
}

func (sp *ServiceProvider) RedisCfg() config.RedisConfig {
	if sp.redisCfg == nil {
		cfg, err := env.NewRedisConfig()
		if err != nil {
			panic("failed to get redis config: " + err.Error())
		}
		sp.redisCfg = cfg
	}
	return sp.redisCfg
}

// RedisPublisher nil, если redis не настроен
func (sp *ServiceProvider) RedisPublisher(ctx context.Context) *feed.RedisPublisher {
	if sp.redisPub == nil && sp.RedisCfg().Addr() != "" {
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{sp.RedisCfg().Addr()},
			Password: sp.RedisCfg().Password(),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			panic("failed to ping redis: " + err.Error())
		}
		sp.redisClient = rdb
		sp.redisPub = feed.NewRedisPublisher(rdb, sp.RedisCfg().Channel())
	}
	return sp.redisPub
}

func (sp *ServiceProvider) WalletRepository(ctx context.Context) repository.WalletRepository {
	if sp.walletRepo == nil {
		if sp.persistent() {
			sp.walletRepo = wallet_repo.NewWalletRepository(sp.DBClient(ctx))
		} else {
			sp.walletRepo = wallet_repo.NewMemoryWalletRepository()
		}
	}
	return sp.walletRepo
}

func (sp *ServiceProvider) SettlementRepository(ctx context.Context) repository.SettlementRepository {
	if sp.settlementRepo == nil {
		if sp.persistent() {
			sp.settlementRepo = settlement_repo.NewSettlementRepository(sp.DBClient(ctx))
		} else {
			sp.settlementRepo = settlement_repo.NewMemorySettlementRepository()
		}
	}
	return sp.settlementRepo
}

func (sp *ServiceProvider) StatsRepository() repository.StatsRepository {
	if sp.statsRepo == nil {
		sp.statsRepo = stats_repo.NewStatsRepository(sp.GameCfg().Stats().WindowSize())
	}
	return sp.statsRepo
}

func (sp *ServiceProvider) WalletService(ctx context.Context) service.WalletService {
	if sp.walletServ == nil {
		sp.walletServ = wallet.NewWalletService(sp.WalletRepository(ctx), sp.GameCfg().Wallet().InitialBalance())
	}
	return sp.walletServ
}

func (sp *ServiceProvider) LedgerService(ctx context.Context) service.LedgerService {
	if sp.ledgerServ == nil {
		sp.ledgerServ = ledger.NewLedgerService(
			sp.WalletService(ctx),
			sp.SettlementRepository(ctx),
			sp.StatsRepository(),
			sp.TXManager(ctx),
		)
	}
	return sp.ledgerServ
}

func (sp *ServiceProvider) Generator() *outcome.Generator {
	if sp.generator == nil {
		src := outcome.NewCryptoSource()
		if seed, ok := sp.RuntimeCfg().RNGSeed(); ok {
			seeded, err := outcome.NewSeededSource(seed)
			if err != nil {
				panic("failed to create seeded source: " + err.Error())
			}
			src = seeded
		}
		sp.generator = outcome.NewGenerator(src, sp.GameCfg().Policy())
	}
	return sp.generator
}

func (sp *ServiceProvider) Clock() *ascent.Clock {
	if sp.clock == nil {
		sp.clock = ascent.NewClock(sp.GameCfg().Ascent().TickPeriod())
	}
	return sp.clock
}

func (sp *ServiceProvider) Broker(ctx context.Context) *feed.Broker {
	if sp.broker == nil {
		b := feed.NewBroker(64)
		if pub := sp.RedisPublisher(ctx); pub != nil {
			b.SetRemote(pub)
		}
		sp.broker = b
	}
	return sp.broker
}

func (sp *ServiceProvider) Registry(ctx context.Context) *registry.Registry {
	if sp.registry == nil {
		sp.registry = registry.NewRegistry(registry.Deps{
			Wallet:    sp.WalletService(ctx),
			Ledger:    sp.LedgerService(ctx),
			Generator: sp.Generator(),
			Clock:     sp.Clock(),
			Feed:      sp.Broker(ctx),
			Scheduler: service.NewScheduler(),
			Config:    sp.GameCfg(),
		})
	}
	return sp.registry
}

func (sp *ServiceProvider) GameHandler(ctx context.Context) *gameAPI.Handler {
	if sp.gameHand == nil {
		sp.gameHand = gameAPI.NewHandler(gameAPI.HandlerDeps{
			Serv: sp.Registry(ctx),
		})
	}
	return sp.gameHand
}

func (sp *ServiceProvider) FeedHandler(ctx context.Context) *feedAPI.Handler {
	if sp.feedHand == nil {
		sp.feedHand = feedAPI.NewHandler(feedAPI.HandlerDeps{
			Feed:     sp.Broker(ctx),
			Presence: sp.Registry(ctx),
		})
	}
	return sp.feedHand
}

func (sp *ServiceProvider) HTTPCfg() config.HTTPConfig {
	if sp.httpCfg == nil {
		cfg, err := env.NewHTTPConfig()
		if err != nil {
			panic("failed to get http config: " + err.Error())
		}
		sp.httpCfg = cfg
	}

	return sp.httpCfg
}

func (sp *ServiceProvider) Router(ctx context.Context) chi.Router {
	if sp.router == nil {
		r := chi.NewRouter()

		// CORS middleware
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           60 * 15,
		}))

		gameHandler := sp.GameHandler(ctx)
		feedHandler := sp.FeedHandler(ctx)

		r.Group(func(rr chi.Router) {
			rr.Use(middleware.Auth(sp.JWTCfg().AccessTokenSecretKey()))

			rr.Get("/balance", gameHandler.Balance)
			rr.Post("/bets", gameHandler.PlaceBet)
			rr.Get("/settlements", gameHandler.Settlements)
			rr.Post("/grid/reveal", gameHandler.Reveal)

			// Session endpoints
			rr.Get("/sessions/{id}", gameHandler.Session)
			rr.Post("/sessions/{id}/cashout", gameHandler.CashOut)
			rr.Post("/sessions/{id}/reveal", gameHandler.Reveal)
			rr.Post("/sessions/{id}/reset", gameHandler.Reset)

			rr.Get("/feed", feedHandler.Stream)

			rr.With(middleware.RequireAdmin).Get("/admin/stats", gameHandler.Stats)
		})

		sp.router = r
	}

	return sp.router
}

// Close освобождает внешние подключения
func (sp *ServiceProvider) Close() {
	if sp.redisClient != nil {
		_ = sp.redisClient.Close()
	}
	if sp.dbClient != nil {
		sp.dbClient.Close()
	}
}
