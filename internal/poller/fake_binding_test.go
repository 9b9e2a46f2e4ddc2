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

// fakeBinding is a scripted facility: tests push batches and wait errors.
type fakeBinding struct {
	mu        sync.Mutex
	entries   map[Descriptor]bool
	armErr    error
	disarmErr error
	wakeErr   error
	batches   chan []Descriptor
	errs      chan error
	woken     chan struct{}
	closed    atomic.Bool
}

func newFakeBinding() *fakeBinding {
	return &fakeBinding{
		entries: make(map[Descriptor]bool),
		batches: make(chan []Descriptor, 16),
		errs:    make(chan error, 1),
		woken:   make(chan struct{}, 1),
	}
}

func (f *fakeBinding) arm(fd Descriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.armErr != nil {
		return f.armErr
	}
	f.entries[fd] = true
	return nil
}

func (f *fakeBinding) disarm(fd Descriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disarmErr != nil {
		return f.disarmErr
	}
	delete(f.entries, fd)
	return nil
}

func (f *fakeBinding) wait(ready []Descriptor) (int, error) {
	select {
	case b := <-f.batches:
		return copy(ready, b), nil
	case err := <-f.errs:
		return 0, err
	case <-f.woken:
		return 0, nil
	}
}

func (f *fakeBinding) wake() error {
	f.mu.Lock()
	err := f.wakeErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	select {
	case f.woken <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeBinding) close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeBinding) fire(fds ...Descriptor) {
	f.batches <- fds
}

func (f *fakeBinding) setArmErr(err error) {
	f.mu.Lock()
	f.armErr = err
	f.mu.Unlock()
}

func (f *fakeBinding) setDisarmErr(err error) {
	f.mu.Lock()
	f.disarmErr = err
	f.mu.Unlock()
}

func (f *fakeBinding) setWakeErr(err error) {
	f.mu.Lock()
	f.wakeErr = err
	f.mu.Unlock()
}
