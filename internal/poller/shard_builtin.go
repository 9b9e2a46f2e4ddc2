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

package poller

// Names of the built-in sharders.
const (
	Hash   string = "Hash"
	Modulo string = "Modulo"
)

func init() {
	RegisterSharder(Hash, hashSharder{})
	RegisterSharder(Modulo, moduloSharder{})
}

// golden is 2^64 divided by the golden ratio.
const golden = 0x9E3779B97F4A7C15

// hashSharder spreads neighbouring descriptors with Fibonacci hashing.
type hashSharder struct{}

func (hashSharder) Name() string {
	return Hash
}

func (hashSharder) Shard(fd Descriptor, n int) int {
	h := uint64(fd) * golden
	return int((h >> 32) % uint64(n))
}

type moduloSharder struct{}

func (moduloSharder) Name() string {
	return Modulo
}

func (moduloSharder) Shard(fd Descriptor, n int) int {
	i := int(fd) % n
	if i < 0 {
		i += n
	}
	return i
}
