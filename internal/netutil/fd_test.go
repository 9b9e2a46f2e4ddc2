// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build linux || freebsd || dragonfly || darwin
// +build linux freebsd dragonfly darwin

package netutil_test

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
	"trpc.group/trpc-go/tpoll/internal/netutil"
)

func TestGetDupTCPFD(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.Nil(t, err)
	defer ln.Close()

	fd0, err := netutil.GetFD(ln)
	require.Nil(t, err)
	fd1, err := netutil.DupFD(ln)
	require.Nil(t, err)
	defer unix.Close(fd1)
	require.NotEqual(t, fd0, fd1)
	flags, err := unix.FcntlInt(uintptr(fd1), unix.F_GETFL, 0)
	require.Nil(t, err)
	assert.NotZero(t, flags&unix.O_NONBLOCK)

	conn, err := net.Dial("tcp4", ln.Addr().String())
	require.Nil(t, err)
	defer conn.Close()
	fd2, err := netutil.GetFD(conn)
	assert.Nil(t, err)
	assert.NotEqual(t, fd0, fd2)
}

func TestGetFDUnixSocket(t *testing.T) {
	ln, err := net.Listen("unix", filepath.Join(t.TempDir(), "test.sock"))
	require.Nil(t, err)
	defer ln.Close()
	_, err = netutil.GetFD(ln)
	assert.Nil(t, err)
}

func TestGetFDNotSupport(t *testing.T) {
	_, err := netutil.GetFD(struct{}{})
	assert.NotNil(t, err)
	_, err = netutil.DupFD(struct{}{})
	assert.NotNil(t, err)
}

func TestGetDupFdAfterClosed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	ln.Close()
	_, err = netutil.GetFD(ln)
	assert.NotNil(t, err)

	_, err = netutil.DupFD(ln)
	assert.NotNil(t, err)
}
