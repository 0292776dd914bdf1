// Package main for the aisgate executable: an intermediation layer in front
// of an object-storage backend that provides server-side copy and on-demand
// data migration.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NVIDIA/aisgate/api/apc"
	"github.com/NVIDIA/aisgate/backend"
	"github.com/NVIDIA/aisgate/cmn"
	"github.com/NVIDIA/aisgate/cmn/nlog"
	"github.com/NVIDIA/aisgate/copier"
	"github.com/NVIDIA/aisgate/migrator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	os.Exit(run())
}

func run() int {
	confPath := flag.String("config", "aisgate.json", "path to the gateway configuration")
	flag.Parse()

	config, err := cmn.LoadConfig(*confPath)
	if err != nil {
		nlog.Errorf("failed to load configuration: %v", err)
		return 1
	}
	if err := nlog.Init(config.Verbosity); err != nil {
		return 1
	}
	defer nlog.Flush()

	backendURL, err := url.Parse(config.BackendURL)
	if err != nil || backendURL.Host == "" {
		nlog.Errorf("invalid backend_url %q: %v", config.BackendURL, err)
		return 1
	}

	registry := backend.NewRegistry(&config.Migration)

	// pipeline: migrator -> copier -> storage backend
	proxy := httputil.NewSingleHostReverseProxy(backendURL)
	chain := migrator.New(copier.New(proxy, config), registry)

	mux := http.NewServeMux()
	mux.Handle("/"+apc.Version+"/", chain)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{Addr: config.Listen, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		nlog.Infof("listening on %s, backend %s", config.Listen, config.BackendURL)
		errCh <- server.ListenAndServe()
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stopCh:
		nlog.Infof("caught %v, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			nlog.Errorf("shutdown: %v", err)
			return 1
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			nlog.Errorf("server: %v", err)
			return 1
		}
	}
	return 0
}
