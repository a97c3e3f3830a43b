// Command authority runs the VC Authority: one Gatekeeper+Verifier+Issuer
// core against one Mongo-backed repository, exposed over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"vcauthority/internal/authority/apiv1"
	"vcauthority/internal/authority/db"
	"vcauthority/internal/authority/httpserver"
	"vcauthority/pkg/configuration"
	"vcauthority/pkg/httpclient"
	"vcauthority/pkg/logger"
	"vcauthority/pkg/trace"
	"vcauthority/pkg/vaultclient"
)

type service interface {
	Close(ctx context.Context) error
}

func main() {
	var wg sync.WaitGroup
	ctx := context.Background()

	services := make(map[string]service)

	cfg, err := configuration.New(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New("vc_authority", cfg.Log.Folder, cfg.Common.Production)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	tracer, err := trace.New(ctx, cfg, log, "vcauthority", "authority")
	if err != nil {
		log.Error(err, "tracer")
		os.Exit(1)
	}

	vault := vaultclient.NewFileVault(cfg.VaultConfig.Path)
	httpClient := httpclient.New(cfg, log.New("httpclient"))

	dbService, err := db.New(ctx, cfg, vault, tracer, log.New("db"))
	if err != nil {
		log.Error(err, "db")
		os.Exit(1)
	}
	services["dbService"] = dbService

	apiv1Client, err := apiv1.New(ctx, cfg, dbService, httpClient, vault, tracer, log.New("apiv1"))
	if err != nil {
		log.Error(err, "apiv1")
		os.Exit(1)
	}
	services["apiv1Client"] = apiv1Client

	httpService, err := httpserver.New(ctx, cfg, apiv1Client, tracer, log.New("httpserver"))
	if err != nil {
		log.Error(err, "httpserver")
		os.Exit(1)
	}
	services["httpService"] = httpService

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan // Blocks here until interrupted

	mainLog := log.New("main")
	mainLog.Info("HALTING SIGNAL!")

	for serviceName, svc := range services {
		if err := svc.Close(ctx); err != nil {
			mainLog.Trace("serviceName", serviceName, "error", err)
		}
	}

	if err := tracer.Shutdown(ctx); err != nil {
		mainLog.Error(err, "Tracer shutdown")
	}

	wg.Wait() // Block here until all workers are done

	mainLog.Info("Stopped")

	os.Exit(0)
}
