// Package stats tracks gateway operation counters exported via Prometheus.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aisgate"

var (
	copyCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "copy_total",
		Help:      "Number of completed server-side copy operations.",
	})
	copyErrCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "copy_errors_total",
		Help:      "Number of failed server-side copy operations.",
	})
	migrateCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "migration_total",
		Help:      "Number of completed on-demand object migrations.",
	}, []string{"provider"})
	migrateErrCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "migration_errors_total",
		Help:      "Number of failed on-demand object migrations.",
	}, []string{"provider"})
)

func IncCopy()    { copyCount.Inc() }
func IncCopyErr() { copyErrCount.Inc() }

func IncMigrate(provider string)    { migrateCount.WithLabelValues(provider).Inc() }
func IncMigrateErr(provider string) { migrateErrCount.WithLabelValues(provider).Inc() }
