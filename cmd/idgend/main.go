// Command idgend runs the identifier allocator as an HTTP service.
//
// Configuration is loaded from environment variables, optionally layered
// over a JSON config file (internal/config). If REDIS_ADDR is set, the
// process leases its instance ID from a shared pool at startup instead of
// using the statically configured INSTANCE_ID; if AUDIT_DB_PATH is set,
// every generated batch is recorded to a SQLite audit database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sxyafiq/idgen"
	"github.com/sxyafiq/idgen/internal/audit"
	"github.com/sxyafiq/idgen/internal/config"
	"github.com/sxyafiq/idgen/internal/coordination"
	"github.com/sxyafiq/idgen/internal/domains"
	"github.com/sxyafiq/idgen/internal/gateway"
	"github.com/sxyafiq/idgen/internal/httpapi"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file (optional)")
	flag.Parse()

	logger := log.New(os.Stderr, "idgend: ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var leaser *coordination.Leaser
	if cfg.RedisAddr != "" {
		leaser = coordination.NewLeaser(cfg.RedisAddr)
		poolSize := uint64(1) << cfg.IDGen.InstanceIDBits
		instanceID, err := leaser.Lease(ctx, poolSize)
		if err != nil {
			// No degraded mode: a failed lease means we cannot guarantee
			// this instance won't collide with another, so refuse to start.
			logger.Fatalf("leasing instance id from %s: %v", cfg.RedisAddr, err)
		}
		cfg.IDGen.InstanceID = instanceID
		logger.Printf("leased instance id %d from %s", instanceID, cfg.RedisAddr)
	}

	alloc, err := idgen.New(cfg.LayoutParams())
	if err != nil {
		logger.Fatalf("building allocator: %v", err)
	}
	logger.Printf("allocator ready: instance=%d max_domain=%d", alloc.InstanceID(), alloc.MaxDomain())

	server := httpapi.NewServer(alloc)
	server.Logger = logger

	if len(cfg.DomainNames) > 0 {
		reg, err := domains.NewRegistry(cfg.DomainNames)
		if err != nil {
			logger.Fatalf("building domain registry: %v", err)
		}
		if uint64(reg.Len())-1 > alloc.MaxDomain() {
			logger.Fatalf("domain_names lists %d names but layout only supports domains 0-%d", reg.Len(), alloc.MaxDomain())
		}
		server.Domains = reg
	}

	if cfg.AuditDBPath != "" {
		sink, err := audit.Open(cfg.AuditDBPath)
		if err != nil {
			logger.Fatalf("opening audit sink: %v", err)
		}
		defer sink.Close()
		server.AuditSink = sink
	}

	var handler http.Handler = server.Handler()
	if len(cfg.PeerAddrs) > 1 {
		router, err := gateway.NewRouter(cfg.PeerAddrs)
		if err != nil {
			logger.Fatalf("building instance router: %v", err)
		}
		handler = gateway.NewReverseProxyHandler(router, cfg.SelfAddr, handler, logger)
		logger.Printf("instance router active: self=%q peers=%v", cfg.SelfAddr, router.Instances())
	}

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	go func() {
		logger.Printf("listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Print("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http server shutdown: %v", err)
	}

	if leaser != nil {
		if err := leaser.Release(context.Background()); err != nil {
			logger.Printf("releasing leased instance id: %v", err)
		}
	}

	fmt.Fprintln(os.Stderr, "idgend: stopped")
}
