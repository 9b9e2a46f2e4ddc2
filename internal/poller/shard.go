// Tencent is pleased to support the open source community by making tnet available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tnet source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License can be found in the LICENSE file.

package poller

import (
	"reflect"
	"sync"
)

var (
	sharders    = make(map[string]Sharder)
	shardersMux = sync.RWMutex{}
)

// Sharder assigns descriptors to the pollers of a Group.
//
// Shard must be a pure function of its arguments: a descriptor's armed state
// lives in exactly one poller, so every Register and Deregister of that
// descriptor has to reach the same shard.
type Sharder interface {
	// Name returns the name of Sharder.
	Name() string

	// Shard returns the index in [0, n) of the poller owning fd.
	Shard(fd Descriptor, n int) int
}

// GetSharder gets a registered Sharder, nil if name is unknown.
func GetSharder(name string) Sharder {
	shardersMux.RLock()
	s := sharders[name]
	shardersMux.RUnlock()
	return s
}

// RegisterSharder registers Sharder under name.
func RegisterSharder(name string, s Sharder) {
	sv := reflect.ValueOf(s)
	if s == nil || sv.Kind() == reflect.Ptr && sv.IsNil() {
		panic("sharder: register nil sharder")
	}
	if name == "" {
		panic("sharder: register empty name of sharder")
	}
	shardersMux.Lock()
	sharders[name] = s
	shardersMux.Unlock()
}
