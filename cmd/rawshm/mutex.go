// Copyright 2016 Aleksandr Demakin. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	stdsync "sync"
	"time"
	"unsafe"

	"github.com/nxgtw/go-rawshm/sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	countTo   uint64
	dieValue  uint64
	holdFor   time.Duration
	incCount  int
	lockLimit time.Duration
)

var mutexCmd = &cobra.Command{
	Use:   "mutex N",
	Short: "Spawns N workers that increment a shared counter under the mutex",
	Long: `Spawns N workers, each of which creates or opens the mapping on its own.
The worker, which created it, formats the mutex. Every worker increments the counter
protected by the mutex until it reaches --count-to.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, err := strconv.Atoi(args[0])
		if err != nil || workers < 1 {
			return errors.Errorf("invalid number of workers %q", args[0])
		}
		return runMutexDemo(cmd.Context(), cmd.OutOrStdout(), workers)
	},
}

func runMutexDemo(ctx context.Context, out io.Writer, workers int) error {
	// a mapping left by a previous run would already hold the final value.
	if stale, err := conf().Size(0).Open(); err == nil {
		if err = stale.Destroy(); err != nil {
			return errors.Wrap(err, "failed to destroy a stale mapping")
		}
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return errors.Wrap(err, "failed to create a worker pool")
	}
	defer pool.Release()

	var (
		wg       stdsync.WaitGroup
		resMu    stdsync.Mutex
		firstErr error
		handles  []*shared
	)
	for i := 0; i < workers; i++ {
		id := i + 1
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			s, err := incrementUntil(ctx, out, id)
			resMu.Lock()
			defer resMu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = err
			}
			if s != nil {
				handles = append(handles, s)
			}
		})
		if err != nil {
			wg.Done()
			return errors.Wrap(err, "failed to submit a worker")
		}
	}
	wg.Wait()
	for _, s := range handles {
		s.close()
	}
	return firstErr
}

func incrementUntil(ctx context.Context, out io.Writer, worker int) (*shared, error) {
	s, err := openAndBringUp(ctx, conf(), false)
	if err != nil {
		return nil, err
	}
	for {
		done := false
		err := s.mu.Do(sync.Infinite, func(data unsafe.Pointer) error {
			val := (*uint64)(data)
			if *val >= countTo {
				fmt.Fprintf(out, "[worker#%d] done!\n", worker)
				done = true
				return nil
			}
			fmt.Fprintf(out, "[worker#%d] val: %d\n", worker, *val)
			*val++
			time.Sleep(holdFor)
			return nil
		})
		if err != nil {
			return s, err
		}
		if done {
			return s, nil
		}
		time.Sleep(holdFor)
	}
}

var incCmd = &cobra.Command{
	Use:   "inc",
	Short: "Increments the shared counter --count times and prints the last value",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openAndBringUp(cmd.Context(), conf(), false)
		if err != nil {
			return err
		}
		defer s.close()
		var last uint64
		for i := 0; i < incCount; i++ {
			err := s.mu.Do(lockLimit, func(data unsafe.Pointer) error {
				val := (*uint64)(data)
				*val++
				last = *val
				return nil
			})
			if err != nil {
				return err
			}
		}
		if err := s.h.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), last)
		return nil
	},
}

var lockAndDieCmd = &cobra.Command{
	Use:   "lock-and-die",
	Short: "Locks the mutex, sets the counter to --value, and exits without unlocking",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openAndBringUp(cmd.Context(), conf(), false)
		if err != nil {
			return err
		}
		g, err := s.mu.Lock(lockLimit)
		if err != nil {
			return err
		}
		*(*uint64)(g.Data()) = dieValue
		fmt.Fprintln(cmd.OutOrStdout(), "locked")
		os.Exit(3)
		return nil
	},
}

func init() {
	mutexCmd.Flags().Uint64Var(&countTo, "count-to", 50, "Count to this value")
	mutexCmd.Flags().DurationVar(&holdFor, "hold", 10*time.Millisecond, "How long a worker holds the mutex")
	incCmd.Flags().IntVar(&incCount, "count", 1, "Number of increments")
	incCmd.Flags().DurationVar(&lockLimit, "timeout", sync.Infinite, "Lock timeout, negative means infinite")
	lockAndDieCmd.Flags().Uint64Var(&dieValue, "value", 0, "Value to store before exiting")
	lockAndDieCmd.Flags().DurationVar(&lockLimit, "timeout", sync.Infinite, "Lock timeout, negative means infinite")
	rootCmd.AddCommand(mutexCmd, incCmd, lockAndDieCmd)
}
