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

package tpoll

import (
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"trpc.group/trpc-go/tpoll/log"
	"trpc.group/trpc-go/tpoll/metrics"
)

var (
	maxRoutines = 0 // meaning INT32_MAX.
	usrPool, _  = ants.NewPool(maxRoutines)
)

// Offload returns a PolledFunc that runs fn on a shared goroutine pool instead
// of the poller's loop. fn usually registers the descriptor again when done.
func Offload(fn PolledFunc) PolledFunc {
	return OffloadWithPool(usrPool, fn)
}

// OffloadWithPool is like Offload with a caller-provided ants pool.
func OffloadWithPool(pool *ants.Pool, fn PolledFunc) PolledFunc {
	return func(fd Descriptor) error {
		err := pool.Submit(func() {
			metrics.Add(metrics.OffloadTasks, 1)
			if err := fn(fd); err != nil {
				log.Errorf("offloaded polled fd %d: %v", fd, err)
			}
		})
		return errors.Wrapf(err, "offload fd %d", fd)
	}
}
