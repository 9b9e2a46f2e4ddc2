// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

//go:build linux
// +build linux

package poller

import (
	"os"

	"golang.org/x/sys/unix"
	"trpc.group/trpc-go/tpoll/metrics"
)

const (
	rflags = unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLPRI
	wflags = unix.EPOLLOUT
)

// wakeBytes is one increment of the eventfd counter. Any non-zero value wakes.
var wakeBytes = []byte{1, 0, 0, 0, 0, 0, 0, 0}

type epoll struct {
	events []unix.EpollEvent
	buf    []byte
	fd     int
	efd    int
	flags  uint32
}

func newBinding(interest Interest, capacity int) (binding, error) {
	// Provide EPOLL_CLOEXEC flag for consistency with Go runtime.
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}
	efd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("eventfd", err)
	}
	// The wakeup fd stays level triggered, wait drains it.
	if err := unix.EpollCtl(fd, unix.EPOLL_CTL_ADD, efd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(efd),
	}); err != nil {
		unix.Close(efd)
		unix.Close(fd)
		return nil, os.NewSyscallError("epoll_ctl add", err)
	}
	ep := &epoll{
		events: make([]unix.EpollEvent, capacity),
		buf:    make([]byte, 8),
		fd:     fd,
		efd:    efd,
		flags:  rflags,
	}
	if interest == Writable {
		ep.flags = wflags
	}
	return ep, nil
}

func (ep *epoll) arm(fd Descriptor) error {
	evt := &unix.EpollEvent{
		Events: ep.flags | unix.EPOLLONESHOT,
		Fd:     int32(fd),
	}
	return splitArm(
		func() error {
			return os.NewSyscallError("epoll_ctl mod", unix.EpollCtl(ep.fd, unix.EPOLL_CTL_MOD, int(fd), evt))
		},
		func() error {
			return os.NewSyscallError("epoll_ctl add", unix.EpollCtl(ep.fd, unix.EPOLL_CTL_ADD, int(fd), evt))
		},
	)
}

func (ep *epoll) disarm(fd Descriptor) error {
	err := unix.EpollCtl(ep.fd, unix.EPOLL_CTL_DEL, int(fd), nil)
	if err == unix.ENOENT {
		return nil
	}
	return os.NewSyscallError("epoll_ctl del", err)
}

func (ep *epoll) wait(ready []Descriptor) (int, error) {
	n, err := unix.EpollWait(ep.fd, ep.events, -1)
	if err == unix.EINTR {
		return 0, nil
	}
	if err != nil {
		return 0, os.NewSyscallError("epoll_wait", err)
	}
	var m int
	for i := 0; i < n && m < len(ready); i++ {
		fd := int(ep.events[i].Fd)
		if fd == ep.efd {
			_, _ = unix.Read(ep.efd, ep.buf)
			metrics.Add(metrics.PollWakeups, 1)
			continue
		}
		ready[m] = Descriptor(fd)
		m++
	}
	return m, nil
}

func (ep *epoll) wake() error {
	for {
		_, err := unix.Write(ep.efd, wakeBytes)
		if err == unix.EINTR {
			continue
		}
		// EAGAIN means the counter is saturated, a wakeup is pending anyway.
		if err == nil || err == unix.EAGAIN {
			return nil
		}
		return os.NewSyscallError("write", err)
	}
}

func (ep *epoll) close() error {
	if err := os.NewSyscallError("close", unix.Close(ep.efd)); err != nil {
		return err
	}
	return os.NewSyscallError("close", unix.Close(ep.fd))
}
