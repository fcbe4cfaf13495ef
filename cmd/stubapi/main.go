// Package main runs the development storefront backend.
//
//	@title			MinalGems Storefront API
//	@version		1.0
//	@description	Development backend implementing the MinalGems storefront contract
//
//	@host		localhost:8080
//	@BasePath	/api
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in						header
//	@name					Authorization
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/config"
	"github.com/Khatrip009/MinalGems-website/internal/esx"
	"github.com/Khatrip009/MinalGems-website/internal/logx"
	"github.com/Khatrip009/MinalGems-website/internal/mqx"
	"github.com/Khatrip009/MinalGems-website/internal/redisx"
	"github.com/Khatrip009/MinalGems-website/internal/server"
	"github.com/Khatrip009/MinalGems-website/internal/stubapi"

	_ "github.com/Khatrip009/MinalGems-website/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load()

	// Load config (env first; optional Apollo override)
	cfg, store, apClose, err := config.Load()
	if err != nil {
		panic(err)
	}
	if apClose != nil {
		defer apClose()
	}

	logx.Init(cfg.Log.Level, cfg.Log.Format)
	mainLogger := logx.GetScope("main")

	mainLogger.Info("config loaded",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.Server.Addr),
		zap.String("log.level", cfg.Log.Level),
		zap.String("log.format", cfg.Log.Format),
	)

	// Optional deps: Redis, MQ, ES
	rdb, redisClose, err := redisx.Open(cfg)
	if err != nil {
		mainLogger.Sugar().Warn("redis init failed", "err", err)
	} else {
		defer redisClose()
	}

	var publisher mqx.Publisher
	if cfg.MQ.URL != "" {
		if pub, err := mqx.NewRabbitPublisher(cfg.MQ.URL, ""); err != nil {
			mainLogger.Sugar().Warn("mq init failed", "err", err)
		} else {
			publisher = pub
			defer pub.Close()
		}
	}

	esClient, esClose, err := esx.Open(cfg)
	if err != nil {
		mainLogger.Sugar().Warn("es init failed", "err", err)
	} else {
		defer esClose()
	}

	domain := stubapi.NewStore()
	hub := stubapi.NewHub()

	app := fiber.New(fiber.Config{ErrorHandler: stubapi.ErrorHandler()})
	stubapi.RegisterCommonMiddlewares(app)
	providers := &stubapi.Providers{MQ: publisher, ES: esClient, RDB: rdb}
	stubapi.Register(app, cfg, domain, hub, providers)

	// Dynamic config (Apollo): reject an empty JWT secret, reconfigure the
	// logger on the fly.
	store.AddValidator(func(newCfg *config.Config, changed map[string]bool) error {
		if changed["jwt.hs_secret"] && newCfg.JWT.HSSecret == "" {
			return fmt.Errorf("JWT_HS_SECRET cannot be empty")
		}
		return nil
	})
	store.Watch(func(newCfg *config.Config, changed map[string]bool) {
		if changed["server.addr"] {
			mainLogger.Warn("server.addr changed; restart required to take effect",
				zap.String("addr", newCfg.Server.Addr),
			)
		}
		if changed["log.level"] || changed["log.format"] {
			logx.Init(newCfg.Log.Level, newCfg.Log.Format)
			mainLogger.Info("logger reconfigured",
				zap.String("level", newCfg.Log.Level),
				zap.String("format", newCfg.Log.Format),
			)
		}
	})

	// Graceful shutdown
	go func() {
		ln, err := server.GetListener(cfg.Server.Addr)
		if err != nil {
			mainLogger.Sugar().Errorf("listener error: %v", err)
			return
		}
		if err := app.Listener(ln); err != nil {
			mainLogger.Sugar().Infof("fiber exit: %v", err)
		}
	}()
	mainLogger.Sugar().Infof("stub backend started on %s", cfg.Server.Addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	mainLogger.Sugar().Info("shutting down...")
	_ = app.Shutdown()
}
