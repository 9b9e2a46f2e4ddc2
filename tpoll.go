//
//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2023 THL A29 Limited, a Tencent company.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

// Package tpoll provides one-shot readiness pollers for consumer-owned file descriptors.
//
// A Poller watches either Readable or Writable. Register arms a descriptor for
// a single notification; when the kernel reports it ready, the Poller's loop
// invokes the PolledFunc once and leaves the descriptor disarmed until it is
// registered again. A Group shards descriptors over several Pollers so that
// dispatch runs on several goroutines while every descriptor keeps a single
// owner.
package tpoll

import (
	"trpc.group/trpc-go/tpoll/internal/poller"
)

// Descriptor is a consumer-owned file descriptor.
type Descriptor = poller.Descriptor

// Interest is the readiness condition a Poller watches.
type Interest = poller.Interest

// Interests that can be watched.
const (
	Readable = poller.Readable
	Writable = poller.Writable
)

// PolledFunc is invoked from a Poller's loop, once per firing of fd.
// It runs inline on the dispatch goroutine, see Offload for blocking work.
type PolledFunc = poller.PolledFunc

// Poller waits on one readiness facility and dispatches fired descriptors.
type Poller = poller.Poller

// Group shards descriptors over several Pollers.
type Group = poller.Group

// Sharder assigns descriptors to the shards of a Group.
type Sharder = poller.Sharder

// Names of the built-in sharders.
const (
	ShardHash   = poller.Hash
	ShardModulo = poller.Modulo
)

// Errors reported by pollers.
var (
	ErrPollerClosed        = poller.ErrPollerClosed
	ErrFacility            = poller.ErrFacility
	ErrUnsupportedPlatform = poller.ErrUnsupportedPlatform
	ErrInvalidCapacity     = poller.ErrInvalidCapacity
)

// NewPoller creates a Poller watching interest and starts its loop.
func NewPoller(interest Interest, polled PolledFunc, opts ...Option) (*Poller, error) {
	o := newOptions(opts...)
	return poller.New(interest, polled, o.pollerOptions()...)
}

// NewGroup creates a Group of WithNumShards pollers watching interest.
func NewGroup(interest Interest, polled PolledFunc, opts ...Option) (*Group, error) {
	o := newOptions(opts...)
	return poller.NewGroup(interest, o.numShards, polled, o.pollerOptions()...)
}

// RegisterSharder registers a Sharder that WithShardStrategy can refer to by name.
func RegisterSharder(name string, s Sharder) {
	poller.RegisterSharder(name, s)
}

// EnablePollerGoschedAfterEvent enables calling runtime.Gosched() after each
// dispatched event. This function can only be called inside func init().
func EnablePollerGoschedAfterEvent() {
	poller.GoschedAfterEvent = true
}
