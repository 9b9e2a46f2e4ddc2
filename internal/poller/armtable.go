// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package poller

import (
	"sync"

	"go.uber.org/atomic"
)

// armTable keeps one armed bit per descriptor.
//
// epoll keeps a fired one-shot entry in its interest list in disabled form,
// so the kernel cannot tell a fired descriptor from an armed one. The bit is
// consumed by whichever of the loop (fire) and Deregister (disarm) gets there
// first, which gives each arming at most one dispatch.
type armTable struct {
	bits sync.Map // Descriptor -> *atomic.Bool
}

func (t *armTable) slot(fd Descriptor) *atomic.Bool {
	if v, ok := t.bits.Load(fd); ok {
		return v.(*atomic.Bool)
	}
	v, _ := t.bits.LoadOrStore(fd, atomic.NewBool(false))
	return v.(*atomic.Bool)
}

func (t *armTable) arm(fd Descriptor) {
	t.slot(fd).Store(true)
}

// fire consumes the bit of a descriptor reported by the facility.
func (t *armTable) fire(fd Descriptor) bool {
	return t.consume(fd)
}

// disarm consumes the bit on behalf of Deregister.
func (t *armTable) disarm(fd Descriptor) bool {
	return t.consume(fd)
}

func (t *armTable) consume(fd Descriptor) bool {
	v, ok := t.bits.Load(fd)
	if !ok {
		return false
	}
	return v.(*atomic.Bool).CompareAndSwap(true, false)
}

// forget drops the slot of a deregistered descriptor.
func (t *armTable) forget(fd Descriptor) {
	t.bits.Delete(fd)
}

// known reports whether fd has a slot, armed or fired.
func (t *armTable) known(fd Descriptor) bool {
	_, ok := t.bits.Load(fd)
	return ok
}

func (t *armTable) armed(fd Descriptor) bool {
	v, ok := t.bits.Load(fd)
	return ok && v.(*atomic.Bool).Load()
}
