//
//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2023 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

package tpoll

import (
	"runtime"

	"trpc.group/trpc-go/tpoll/internal/poller"
)

// Option tpoll poller option.
type Option struct {
	f func(*options)
}

type options struct {
	onFault   func(id int, err error)
	sharder   string
	capacity  int
	numShards int
	strict    bool
}

func newOptions(opts ...Option) *options {
	o := &options{}
	o.setDefault()
	for _, opt := range opts {
		opt.f(o)
	}
	return o
}

func (o *options) setDefault() {
	o.capacity = poller.DefaultCapacity
	o.numShards = runtime.GOMAXPROCS(0)
	o.sharder = poller.Hash
}

func (o *options) pollerOptions() []poller.Option {
	return []poller.Option{
		poller.WithCapacity(o.capacity),
		poller.WithSharder(o.sharder),
		poller.WithStrictCallbacks(o.strict),
		poller.WithFaultHandler(o.onFault),
	}
}

// WithBatchCapacity sets the number of events drained by one wait.
// Default value is 512.
func WithBatchCapacity(n int) Option {
	return Option{func(op *options) {
		op.capacity = n
	}}
}

// WithNumShards sets the number of pollers of a Group.
// Default value is runtime.GOMAXPROCS(0).
func WithNumShards(n int) Option {
	return Option{func(op *options) {
		op.numShards = n
	}}
}

// WithShardStrategy sets the name of the Sharder used by a Group.
// Default value is ShardHash.
func WithShardStrategy(name string) Option {
	return Option{func(op *options) {
		op.sharder = name
	}}
}

// WithStrictCallbacks sets whether an error or a panic from the PolledFunc
// stops the poller. Default value is false: the failure is logged and the
// loop goes on with the next descriptor.
func WithStrictCallbacks(strict bool) Option {
	return Option{func(op *options) {
		op.strict = strict
	}}
}

// WithFaultHandler registers the function fired once when a poller stops on
// an unrecoverable error. id is the shard index of the poller. The poller has
// already logged the fault; the handler decides what the process does next.
func WithFaultHandler(onFault func(id int, err error)) Option {
	return Option{func(op *options) {
		op.onFault = onFault
	}}
}
