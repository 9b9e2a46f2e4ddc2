// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package poller

import (
	"github.com/pkg/errors"
)

// Group shards descriptors over several pollers watching the same Interest.
// Each shard runs its own loop and shares nothing with the others.
type Group struct {
	pollers  []*Poller
	sharder  Sharder
	interest Interest
}

// NewGroup creates a Group of n pollers that all invoke polled.
func NewGroup(interest Interest, n int, polled PolledFunc, opts ...Option) (*Group, error) {
	if n <= 0 {
		return nil, errors.Errorf("number of pollers must be positive, got %d", n)
	}
	o := newOptions(opts...)
	sharder := GetSharder(o.sharder)
	if sharder == nil {
		return nil, errors.Errorf("sharder %s is not registered", o.sharder)
	}
	g := &Group{
		pollers:  make([]*Poller, 0, n),
		sharder:  sharder,
		interest: interest,
	}
	for i := 0; i < n; i++ {
		shardOpts := append(append(make([]Option, 0, len(opts)+1), opts...), withID(i))
		p, err := New(interest, polled, shardOpts...)
		if err != nil {
			_ = g.Close()
			return nil, err
		}
		g.pollers = append(g.pollers, p)
	}
	return g, nil
}

// Interest returns the readiness condition watched by g.
func (g *Group) Interest() Interest {
	return g.interest
}

// Sharder returns the assignment strategy of g.
func (g *Group) Sharder() Sharder {
	return g.sharder
}

// Pick returns the poller owning fd.
func (g *Group) Pick(fd Descriptor) *Poller {
	return g.pollers[g.sharder.Shard(fd, len(g.pollers))]
}

// Register arms fd on its shard.
func (g *Group) Register(fd Descriptor) error {
	return g.Pick(fd).Register(fd)
}

// Deregister removes fd from its shard and reports whether it was armed.
func (g *Group) Deregister(fd Descriptor) (bool, error) {
	return g.Pick(fd).Deregister(fd)
}

// Len returns the number of shards.
func (g *Group) Len() int {
	return len(g.pollers)
}

// Iterate invokes f for every shard, iteration stops when f returns false.
func (g *Group) Iterate(f func(int, *Poller) bool) {
	for i, p := range g.pollers {
		if !f(i, p) {
			break
		}
	}
}

// Err returns the fault of the first stopped shard, nil if all are healthy.
func (g *Group) Err() error {
	for _, p := range g.pollers {
		if err := p.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all the shards and returns the first error.
func (g *Group) Close() error {
	var first error
	for _, p := range g.pollers {
		if err := p.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
