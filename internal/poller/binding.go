// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

package poller

import (
	"syscall"

	"github.com/pkg/errors"
	"trpc.group/trpc-go/tpoll/metrics"
)

// binding is a kernel readiness facility watching one Interest in one-shot mode.
type binding interface {
	// arm arms or re-arms fd for a single notification.
	arm(fd Descriptor) error
	// disarm removes fd. A missing entry is not an error.
	disarm(fd Descriptor) error
	// wait blocks until at least one descriptor fires or wake is called, and
	// decodes fired descriptors into ready. An interrupted wait returns 0, nil.
	wait(ready []Descriptor) (int, error)
	// wake makes a concurrent or the next wait return.
	wake() error
	close() error
}

// splitArm re-arms through modify and falls back to add only when the
// facility has no entry for the descriptor. Re-arms after a firing are the
// common case, so first registrations pay for the extra call.
func splitArm(modify, add func() error) error {
	err := modify()
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.ENOENT) {
		return err
	}
	metrics.Add(metrics.RegisterAddFallback, 1)
	return add()
}
