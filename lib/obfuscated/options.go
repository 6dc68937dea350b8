// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package obfuscated

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/securestring/lib/config"
	"github.com/bureau-foundation/securestring/lib/secret"
)

// DefaultCapacity is the number of bytes pre-allocated by [New] when
// Options.DefaultCapacity is zero.
const DefaultCapacity = 80

// Options configures a String. The zero value is usable: heap memory,
// masks from the system CSPRNG, locking enabled, no logging.
type Options struct {
	// DefaultCapacity is the capacity [New] pre-allocates. If zero or
	// negative, [DefaultCapacity] is used.
	DefaultCapacity int

	// DisableLocking removes the per-instance mutex. A String created
	// with DisableLocking must only be used from one goroutine at a
	// time; concurrent use is a data race.
	DisableLocking bool

	// Allocator provides the mask, data, and view regions. If nil,
	// secret.Heap is used.
	Allocator secret.Allocator

	// Random fills new masks. If nil, masks come from the system
	// CSPRNG via secret.Scramble. Tests inject deterministic readers
	// here; production code should leave it nil.
	Random io.Reader

	// Logger receives operational messages (refused checkouts, close
	// with an outstanding view). Plaintext is never logged. If nil, a
	// no-op logger is used.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.DefaultCapacity <= 0 {
		o.DefaultCapacity = DefaultCapacity
	}
	if o.Allocator == nil {
		o.Allocator = secret.Heap()
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// OptionsFromConfig converts the strings section of a loaded
// configuration into Options. The logger is used both for the strings
// and for the prefer-locked allocator's fallback warnings.
func OptionsFromConfig(strings config.StringsConfig, logger *slog.Logger) (Options, error) {
	var allocator secret.Allocator
	switch strings.Allocator {
	case config.AllocatorHeap:
		allocator = secret.Heap()
	case config.AllocatorLocked:
		allocator = secret.Locked()
	case config.AllocatorPreferLocked, "":
		allocator = secret.PreferLocked(logger)
	default:
		return Options{}, fmt.Errorf("obfuscated: unknown allocator %q", strings.Allocator)
	}

	return Options{
		DefaultCapacity: strings.DefaultCapacity,
		DisableLocking:  !strings.ThreadSafe,
		Allocator:       allocator,
		Logger:          logger,
	}, nil
}

func (o Options) newLocker() sync.Locker {
	if o.DisableLocking {
		return noLock{}
	}
	return &sync.Mutex{}
}

// noLock is the locker of a String created with DisableLocking.
type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}
