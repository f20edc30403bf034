// Command edge-core runs the instance orchestrator's HTTP adapter: it
// wires the Vault, Quest registry and a set of capability backends
// behind the Instancius/Jobs facades, exposes them over chi, and
// optionally persists periodic Vault snapshots to Redis.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/flecs-run/edge-core/internal/capability"
	"github.com/flecs-run/edge-core/internal/capability/captest"
	"github.com/flecs-run/edge-core/internal/capability/cached"
	"github.com/flecs-run/edge-core/internal/config"
	"github.com/flecs-run/edge-core/internal/httpapi"
	"github.com/flecs-run/edge-core/internal/middleware"
	"github.com/flecs-run/edge-core/internal/quest"
	"github.com/flecs-run/edge-core/internal/sorcerer"
	"github.com/flecs-run/edge-core/internal/vault"
	"github.com/flecs-run/edge-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	v := vault.New()
	deployment, floxy, usb := wireCapabilities(v, logg)

	registry := quest.NewRegistry(context.Background())
	instancius := sorcerer.NewInstancius(v, deployment, floxy, usb)
	jobs := sorcerer.NewJobs(registry)

	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)

	srv := httpapi.NewServer(instancius, jobs, registry, logg, metrics)

	var snapshotStop func()
	if cfg.Snapshot.Enabled {
		snapshotStop, err = startSnapshotJob(v, cfg.Snapshot, logg)
		if err != nil {
			log.Fatalf("start snapshot job: %v", err)
		}
	}

	addr := listenAddr(cfg)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv.Router(),
	}

	go func() {
		logg.WithField("addr", addr).Info("edge-core listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if snapshotStop != nil {
		snapshotStop()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}

func listenAddr(cfg *config.Config) string {
	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == 0 {
		port = 8951
	}
	return host + ":" + strconv.Itoa(port)
}

// wireCapabilities builds the capability backends this process runs
// against and registers the deployment into the vault's DeploymentPouch.
// The core is agnostic to what backs a Deployment; the in-memory fakes
// here stand in for the container-engine, reverse-proxy and USB-reader
// integrations a real host would point at.
func wireCapabilities(v *vault.Vault, logg *logger.Logger) (capability.Deployment, capability.Floxy, capability.UsbDeviceReader) {
	raw := captest.NewDeployment("local")
	dep, err := cached.NewDeployment(raw, 256, 5*time.Second)
	if err != nil {
		logg.WithField("error", err).Fatal("build deployment status cache")
	}

	g := v.Reservation().ReserveDeploymentPouchMut().Grab()
	g.Deployments.Set(dep)
	g.Release()

	floxy := captest.NewFloxy(20000)
	usb := captest.NewUsbDeviceReader(map[string]capability.UsbDevice{})
	return dep, floxy, usb
}

// startSnapshotJob schedules a periodic Vault snapshot to a Redis-backed
// SnapshotStore on cfg.Schedule, returning a function that stops the
// cron scheduler.
func startSnapshotJob(v *vault.Vault, cfg config.SnapshotConfig, logg *logger.Logger) (func(), error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	store := vault.NewRedisSnapshotStore(client)

	c := cron.New()
	_, err = c.AddFunc(cfg.Schedule, func() {
		data, err := v.Snapshot()
		if err != nil {
			logg.WithField("error", err).Error("snapshot vault")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Save(ctx, cfg.Key, data); err != nil {
			logg.WithField("error", err).Error("save vault snapshot")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()

	return func() {
		<-c.Stop().Done()
		_ = client.Close()
	}, nil
}
