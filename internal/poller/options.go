// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package poller

// DefaultCapacity is the default number of events drained by one wait.
const DefaultCapacity = 512

type options struct {
	binding  binding
	onFault  func(id int, err error)
	sharder  string
	capacity int
	id       int
	strict   bool
}

func newOptions(opts ...Option) *options {
	o := &options{
		capacity: DefaultCapacity,
		sharder:  Hash,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option provides poller option.
type Option func(*options)

// WithCapacity sets the size of the event batch drained by one wait.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithStrictCallbacks sets whether a failing callback stops the poller.
// By default callback errors and panics are logged and the loop goes on.
func WithStrictCallbacks(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithFaultHandler sets the function called once, on its own goroutine, when a
// poller stops on a fault. It is called with the shard index of the poller.
func WithFaultHandler(f func(id int, err error)) Option {
	return func(o *options) {
		o.onFault = f
	}
}

// WithSharder sets the name of the Sharder used by a Group.
func WithSharder(name string) Option {
	return func(o *options) {
		o.sharder = name
	}
}

func withID(id int) Option {
	return func(o *options) {
		o.id = id
	}
}

func withBinding(b binding) Option {
	return func(o *options) {
		o.binding = b
	}
}
