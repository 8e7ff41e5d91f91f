// Package main provides the roll server binary that serves the swing dice engine
// over gRPC.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cory-johannsen/swingdice/internal/config"
	"github.com/cory-johannsen/swingdice/internal/game/dice"
	"github.com/cory-johannsen/swingdice/internal/game/preset"
	"github.com/cory-johannsen/swingdice/internal/gameserver"
	dicev1 "github.com/cory-johannsen/swingdice/internal/gameserver/dicev1"
	"github.com/cory-johannsen/swingdice/internal/observability"
	"github.com/cory-johannsen/swingdice/internal/scripting"
	"github.com/cory-johannsen/swingdice/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "rollserver")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting roll server",
		zap.String("grpc_addr", cfg.RollServer.Addr()),
	)

	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)

	// Presets: built-ins plus the content directory.
	presets := preset.Defaults()
	if dir := cfg.Content.PresetsDir; dir != "" {
		if err := preset.LoadDirectory(dir, presets); err != nil {
			logger.Fatal("loading presets", zap.String("dir", dir), zap.Error(err))
		}
	}
	logger.Info("presets loaded", zap.Int("count", presets.Len()))

	scriptMgr := scripting.NewManager(logger)
	defer scriptMgr.Close()
	if dir := cfg.Content.ScriptsDir; dir != "" {
		if err := loadScripts(scriptMgr, dir, cfg.Content.InstructionLimit); err != nil {
			logger.Fatal("loading scripts", zap.String("dir", dir), zap.Error(err))
		}
	}

	svc := gameserver.NewDiceServiceServer(roller, presets, scriptMgr, gameserver.ServiceOptions{
		Limits:       cfg.Engine.Limits(),
		DefaultSwing: cfg.Engine.DefaultSwing,
		MaxTrials:    cfg.Engine.MaxTrials,
		Workers:      cfg.Engine.Workers,
	}, logger)

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(observability.UnaryLoggingInterceptor(logger)),
	)
	dicev1.RegisterDiceServiceServer(grpcServer, svc)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(dicev1.ServiceName, healthpb.HealthCheckResponse_SERVING)

	lifecycle := server.NewLifecycle(logger, cfg.RollServer.ShutdownTimeout)
	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.RollServer.Addr())
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.RollServer.Addr(), err)
			}
			logger.Info("gRPC server listening",
				zap.String("addr", lis.Addr().String()),
			)
			return grpcServer.Serve(lis)
		},
		StopFn: func() {
			healthServer.Shutdown()
			grpcServer.GracefulStop()
		},
		ForceFn: grpcServer.Stop,
	})

	logger.Info("roll server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// loadScripts loads dir's top-level *.lua files as the global set and every
// subdirectory as a set named after it.
func loadScripts(mgr *scripting.Manager, dir string, instLimit int) error {
	if err := mgr.LoadGlobal(dir, instLimit); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading script dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := mgr.Load(e.Name(), filepath.Join(dir, e.Name()), instLimit); err != nil {
			return err
		}
	}
	return nil
}
