// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

package netutil

import (
	"fmt"
	"net"

	goreuseport "github.com/kavu/go_reuseport"
)

// Listen announces on the local network address. With reuseport, several
// listeners may share the address and the kernel balances connections over them.
// The network must be "tcp", "tcp4", "tcp6".
func Listen(network, address string, reuseport bool) (net.Listener, error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, fmt.Errorf("network %s is not support", network)
	}
	if reuseport {
		return goreuseport.Listen(network, address)
	}
	return net.Listen(network, address)
}

// ListenFD is like Listen and also returns a caller-owned nonblocking copy of
// the listener's descriptor, ready to be registered with a poller.
func ListenFD(network, address string, reuseport bool) (net.Listener, int, error) {
	ln, err := Listen(network, address, reuseport)
	if err != nil {
		return nil, -1, err
	}
	fd, err := DupFD(ln)
	if err != nil {
		ln.Close()
		return nil, -1, err
	}
	return ln, fd, nil
}
