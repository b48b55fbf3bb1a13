// Copyright 2016 Aleksandr Demakin. All rights reserved.

// Package metrics holds prometheus collectors for mappings and synchronization primitives.
package metrics

import (
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "rawshm"

// Registry is a registry with all library collectors.
// It is not the default prometheus registry, so importing the library has no global side effects.
// Applications serve it through their own gatherers, or write it out with Dump.
var Registry = prometheus.NewRegistry()

var (
	// MappingsCreated counts mappings created by this process.
	MappingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mapping",
		Name:      "created_total",
		Help:      "Number of shared memory mappings created by this process.",
	})
	// MappingsOpened counts mappings opened by this process.
	MappingsOpened = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mapping",
		Name:      "opened_total",
		Help:      "Number of existing shared memory mappings opened by this process.",
	})
	// MappingsUnmapped counts views unmapped on release.
	MappingsUnmapped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mapping",
		Name:      "unmapped_total",
		Help:      "Number of mapping views unmapped by owning handles.",
	})
	// HandlesClosed counts os handles closed on release.
	HandlesClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mapping",
		Name:      "handles_closed_total",
		Help:      "Number of per-process mapping handles closed.",
	})
	// TeardownErrors counts failures, which were logged during release.
	TeardownErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mapping",
		Name:      "teardown_errors_total",
		Help:      "Number of failed teardown operations.",
	}, []string{"op"})

	// LockAcquired counts successful mutex acquisitions by result.
	LockAcquired = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mutex",
		Name:      "acquire_total",
		Help:      "Number of mutex acquisition attempts by result.",
	}, []string{"result"})
	// EventSets counts event state changes.
	EventSets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "event",
		Name:      "set_total",
		Help:      "Number of event state changes by target state.",
	}, []string{"state"})
	// EventWaits counts event waits by result.
	EventWaits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "event",
		Name:      "wait_total",
		Help:      "Number of event waits by result.",
	}, []string{"result"})
)

// result label values.
const (
	ResultOK        = "ok"
	ResultTimeout   = "timeout"
	ResultAbandoned = "abandoned"
	ResultCanceled  = "canceled"
	ResultError     = "error"
)

func init() {
	Registry.MustRegister(
		MappingsCreated,
		MappingsOpened,
		MappingsUnmapped,
		HandlesClosed,
		TeardownErrors,
		LockAcquired,
		EventSets,
		EventWaits,
	)
}

// Dump writes current values of all collectors in the prometheus text format.
func Dump(w io.Writer) error {
	families, err := Registry.Gather()
	if err != nil {
		return errors.Wrap(err, "failed to gather metrics")
	}
	for _, f := range families {
		if _, err := expfmt.MetricFamilyToText(w, f); err != nil {
			return errors.Wrapf(err, "failed to write %s", f.GetName())
		}
	}
	return nil
}
