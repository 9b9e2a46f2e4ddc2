//
//
// Tencent is pleased to support the open source community by making tRPC available.
//
// Copyright (C) 2023 Tencent.
// All rights reserved.
//
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the  Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.
//
//

//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

// Package netutil turns net types into descriptors a poller can watch.
package netutil

import (
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// GetFD returns the integer Unix file descriptor referencing the socket.
// The descriptor stays owned by socket and is closed with it.
func GetFD(socket any) (int, error) {
	conn, ok := socket.(syscall.Conn)
	if !ok {
		return -1, fmt.Errorf("type %T doesn't implement syscall.Conn interface", socket)
	}
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return -1, errors.Wrap(err, "get raw connection fail")
	}
	fd := -1
	err = rawConn.Control(func(sysfd uintptr) {
		fd = int(sysfd)
	})
	if fd == -1 {
		return -1, errors.New("invalid file descriptor")
	}
	return fd, err
}

// DupFD duplicates the descriptor of socket into a close-on-exec, nonblocking
// descriptor owned by the caller. The Go runtime keeps watching the original,
// the copy can be handed to a poller and closed independently.
func DupFD(socket any) (int, error) {
	fd, err := GetFD(socket)
	if err != nil {
		return -1, err
	}
	nfd, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return -1, os.NewSyscallError("fcntl dupfd", err)
	}
	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return -1, os.NewSyscallError("setnonblock", err)
	}
	return nfd, nil
}
