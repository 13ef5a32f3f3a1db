package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-cubirds/config"
	"go-cubirds/controller"
	"go-cubirds/engine"
	"go-cubirds/logging"
	"go-cubirds/middleware"
	"go-cubirds/oracle"
	"go-cubirds/repository"
	"go-cubirds/router"
	"go-cubirds/service"
	"go-cubirds/utils"
	"go-cubirds/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.DevLog)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := repository.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, rdb.Close()) }()

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := &rand.LockedSource{}
	src.Seed(seed)

	suggester, err := newOracle(cfg.Oracle, logger)
	if err != nil {
		return err
	}
	if closer, ok := suggester.(interface{ Close() error }); ok {
		defer func() { err = multierr.Append(err, closer.Close()) }()
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	svc := service.NewRoomService(
		repository.NewStore(rdb, cfg.RoomTTL, logger.Named("store")),
		engine.New(engine.WithSeed(seed), engine.WithLogger(logger.Named("engine"))),
		oracle.NewPolicy(suggester, rand.New(src), logger.Named("policy")),
		tokens,
		cfg.AIDelay,
		logger.Named("service"),
	)
	hub := ws.NewHub(svc, tokens, logger.Named("ws"))

	r := gin.New()
	r.Use(middleware.Logger(logger.Named("http")), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))
	router.InitRouter(r,
		controller.NewRoomController(svc, logger.Named("controller")),
		controller.NewGameController(svc, logger.Named("controller")),
		hub, tokens)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.Uint64("seed", seed))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	hub.Close()
	svc.Close()
	return err
}

// newOracle picks the strategy backend for computer seats: a Lua script,
// then a remote service, then none.
func newOracle(cfg config.Oracle, logger *zap.Logger) (oracle.Oracle, error) {
	switch {
	case cfg.Script != "":
		logger.Info("using lua oracle", zap.String("script", cfg.Script))
		return oracle.NewLuaOracle(cfg.Script)
	case cfg.URL != "":
		logger.Info("using http oracle", zap.String("url", cfg.URL))
		return oracle.NewHTTPOracle(cfg.URL, cfg.Timeout, logger.Named("oracle")), nil
	default:
		logger.Info("no oracle configured, computer plays the fallback policy")
		return nil, nil
	}
}
