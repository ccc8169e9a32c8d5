package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"claimspring.org/internal/audit"
	"claimspring.org/internal/auth"
	"claimspring.org/internal/claims"
	"claimspring.org/internal/fraud"
	"claimspring.org/internal/httpapi"
	"claimspring.org/internal/obs"
	"claimspring.org/internal/store/memory"
	"claimspring.org/internal/store/pg"
)

var version = "0.3.1"

type stores struct {
	claims claims.Store
	alerts fraud.Store
	users  auth.Store
	audits audit.Store
}

func main() {
	obs.Init()

	secret := os.Getenv("CLAIMSPRING_AUTH_SECRET")
	if secret == "" {
		log.Fatal("CLAIMSPRING_AUTH_SECRET is required")
	}

	addr := os.Getenv("CLAIMSPRING_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	var (
		st      stores
		pgStore *pg.Store
	)
	if dsn := os.Getenv("CLAIMSPRING_PG_DSN"); dsn != "" {
		var err error
		pgStore, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		st = stores{claims: pgStore, alerts: pgStore, users: pgStore, audits: pgStore}
	} else {
		// DSN-less development mode: volatile store with demo accounts
		mem := memory.New()
		password := os.Getenv("CLAIMSPRING_DEMO_PASSWORD")
		if password == "" {
			password = "demo1234"
		}
		if err := mem.SeedDemoUsers(password); err != nil {
			log.Fatalf("seed demo users: %v", err)
		}
		st = stores{claims: mem, alerts: mem, users: mem, audits: mem}
		log.Println("No CLAIMSPRING_PG_DSN set, using in-memory store with demo users")
	}

	highRisk := claims.DefaultHighRiskProviders
	if raw := os.Getenv("CLAIMSPRING_HIGH_RISK_PROVIDERS"); raw != "" {
		highRisk = nil
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				highRisk = append(highRisk, name)
			}
		}
	}

	policy, err := claims.NewPolicy(claims.Status(os.Getenv("CLAIMSPRING_DEFAULT_STATUS")))
	if err != nil {
		log.Fatalf("default status: %v", err)
	}

	recorder := audit.NewRecorder(nil)
	authSvc, err := auth.NewService(st.users, st.audits, recorder, secret)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	scorer := claims.NewScorer(highRisk, claims.UniformJitter())
	claimSvc := claims.NewService(st.claims, scorer, policy, recorder, nil)
	alertSvc := fraud.NewService(st.alerts, recorder, nil)

	probe := httpapi.ReadyProbe{}
	if pgStore != nil {
		probe.DB = pgStore.DB()
	}
	api := httpapi.New(probe, version, authSvc, claimSvc, alertSvc)

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting claimspring-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if pgStore != nil {
		_ = pgStore.Close()
	}
	log.Println("Stopped")
}
