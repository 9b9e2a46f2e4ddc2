// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package tpoll

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"trpc.group/trpc-go/tpoll/internal/poller"
)

func TestTPOLLOptions(t *testing.T) {
	opts := newOptions()
	assert.Equal(t, 512, opts.capacity)
	assert.Equal(t, runtime.GOMAXPROCS(0), opts.numShards)
	assert.Equal(t, ShardHash, opts.sharder)
	assert.False(t, opts.strict)

	WithBatchCapacity(64).f(opts)
	assert.Equal(t, 64, opts.capacity)

	WithNumShards(3).f(opts)
	assert.Equal(t, 3, opts.numShards)

	WithShardStrategy(ShardModulo).f(opts)
	assert.Equal(t, ShardModulo, opts.sharder)

	WithStrictCallbacks(true).f(opts)
	assert.True(t, opts.strict)

	var gotID int
	WithFaultHandler(func(id int, err error) { gotID = id }).f(opts)
	opts.onFault(5, errors.New("test"))
	assert.Equal(t, 5, gotID)

	assert.Len(t, opts.pollerOptions(), 4)
}

func TestEnablePollerGoschedAfterEvent(t *testing.T) {
	defer func() { poller.GoschedAfterEvent = false }()
	EnablePollerGoschedAfterEvent()
	assert.True(t, poller.GoschedAfterEvent)
}
