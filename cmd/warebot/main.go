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

	"warebot/catalog"
	"warebot/config"
	"warebot/engine"
	"warebot/inventory"
	"warebot/journal"
	"warebot/logfile"
	"warebot/messaging"
	"warebot/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "warebot.yaml", "path to config file")
	demo := flag.Bool("demo", false, "seed a few sample requests at startup")
	flag.Parse()

	if *showVersion {
		fmt.Println("warebot", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Inventory seeded from the built-in catalog
	parts := catalog.SampleParts()
	inv := inventory.New(cfg.Inventory.Capacity, catalog.InitialStock(parts))
	log.Printf("warebot: inventory seeded with %d parts", len(inv.Parts()))

	// Log sinks
	eventLog, err := logfile.New(cfg.Logs.Dir, "Events")
	if err != nil {
		log.Printf("warebot: event log unavailable (%v)", err)
	} else {
		defer eventLog.Close()
	}
	ingestLog, err := logfile.New(cfg.Logs.Dir, "Ingest")
	if err != nil {
		log.Printf("warebot: ingest log unavailable (%v)", err)
	} else {
		defer ingestLog.Close()
	}

	// Journal
	var jdb *journal.DB
	if cfg.Journal.Enabled {
		jdb, err = journal.Open(&cfg.Journal)
		if err != nil {
			log.Printf("warebot: journal unavailable (%v), running without it", err)
		} else {
			defer jdb.Close()
			log.Printf("warebot: journal open (%s)", cfg.Journal.Driver)
		}
	}

	// Messaging client
	var msgClient *messaging.Client
	if cfg.Messaging.Enabled {
		msgClient, err = messaging.NewClient(&cfg.Messaging)
		if err != nil {
			log.Fatalf("messaging: %v", err)
		}
		if err := msgClient.Connect(); err != nil {
			log.Printf("warebot: messaging connect failed (%v)", err)
		} else {
			log.Printf("warebot: messaging connected (%s)", msgClient.Backend())
		}
		defer msgClient.Close()
	}

	// Engine
	eng := engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: *configPath,
		Inventory:  inv,
		Journal:    jdb,
		MsgClient:  msgClient,
		EventLog:   eventLog,
		IngestLog:  ingestLog,
	})
	if err := eng.Start(); err != nil {
		log.Fatalf("engine start: %v", err)
	}

	if *demo {
		seedDemoRequests(eng)
	}

	// Web server
	handler, stopWeb := www.NewRouter(eng)
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("warebot: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("warebot: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("warebot: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	eng.Stop()

	if count, err := eng.WriteReport(cfg.Report.Path); err != nil {
		log.Printf("warebot: final report: %v", err)
	} else {
		log.Printf("warebot: final report written to %s (%d records)", cfg.Report.Path, count)
	}

	log.Printf("warebot: stopped")
}

func seedDemoRequests(eng *engine.Engine) {
	demo := []struct {
		partID string
		qty    int
	}{
		{"P1001", 5},
		{"P1003", 10},
		{"P1002", 8},
		{"P1009", 3},
		{"P1001", 40}, // more than stocked; will fail
	}
	for _, d := range demo {
		if _, err := eng.Fleet().SubmitFrom(d.partID, d.qty, "demo"); err != nil {
			log.Printf("warebot: demo seed %s: %v", d.partID, err)
		}
	}
	log.Printf("warebot: seeded %d demo requests", len(demo))
}
