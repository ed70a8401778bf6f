// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// Topology selects how finished chunk tasks are reduced.
type Topology int

const (
	// TopologyTree reduces pairwise, level by level.
	TopologyTree Topology = iota
	// TopologySequential folds tasks one by one as they finish.
	TopologySequential
)

// String returns the configuration name of t.
func (t Topology) String() string {
	switch t {
	case TopologyTree:
		return "tree"
	case TopologySequential:
		return "sequential"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// ParseTopology maps "tree" or "sequential" to a Topology.
func ParseTopology(s string) (Topology, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tree", "":
		return TopologyTree, nil
	case "sequential":
		return TopologySequential, nil
	default:
		return 0, fmt.Errorf("pipeline: unknown topology %q", s)
	}
}

// Option configures Run.
type Option func(*options)

type options struct {
	workers  int
	topology Topology
	logger   *slog.Logger
}

func defaultOptions() options {
	return options{
		workers:  runtime.GOMAXPROCS(0),
		topology: TopologyTree,
		logger:   slog.Default(),
	}
}

// WithWorkers bounds the number of chunks processed concurrently.
// Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("pipeline: WithWorkers(%d): need at least one worker", n))
	}

	return func(o *options) { o.workers = n }
}

// WithTopology selects the reduction topology.
func WithTopology(t Topology) Option {
	return func(o *options) { o.topology = t }
}

// WithLogger sets the logger for run events; nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
