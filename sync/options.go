// Copyright 2016 Aleksandr Demakin. All rights reserved.

package sync

import (
	"time"

	"github.com/nxgtw/go-rawshm/internal/logger"
)

const (
	defaultSpinCount    = 100
	defaultPollInterval  = 10 * time.Millisecond
	defaultOrphanTimeout = time.Second
)

// Option configures a primitive.
type Option func(*options)

type options struct {
	spinCount     int
	pollInterval  time.Duration
	orphanTimeout time.Duration
	alive         func(pid int) bool
	log           *logger.Logger
}

func makeOptions(opts []Option) options {
	result := options{
		spinCount:     defaultSpinCount,
		pollInterval:  defaultPollInterval,
		orphanTimeout: defaultOrphanTimeout,
		alive:         processAlive,
		log:           logger.Default(),
	}
	for _, opt := range opts {
		opt(&result)
	}
	return result
}

// WithSpinCount sets the number of lock attempts before the caller goes to sleep.
func WithSpinCount(count int) Option {
	return func(o *options) {
		if count >= 0 {
			o.spinCount = count
		}
	}
}

// WithPollInterval sets how often a blocked mutex checks its holder for liveness,
// and how often WaitContext checks its context.
func WithPollInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.pollInterval = interval
		}
	}
}

// WithOrphanTimeout sets how long a mutex may stay locked without a recorded holder,
// before a waiter takes it over.
func WithOrphanTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.orphanTimeout = timeout
		}
	}
}

// WithLivenessCheck replaces the function, which reports whether a process with given pid is running.
func WithLivenessCheck(alive func(pid int) bool) Option {
	return func(o *options) {
		if alive != nil {
			o.alive = alive
		}
	}
}

// WithLogger sets the logger for the primitive.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
