// Tencent is pleased to support the open source community by making tnet available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tnet source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License can be found in the LICENSE file.

//go:build freebsd || dragonfly || darwin
// +build freebsd dragonfly darwin

package poller

import (
	"os"

	"golang.org/x/sys/unix"
	"trpc.group/trpc-go/tpoll/metrics"
)

// wakeIdent identifies the EVFILT_USER event used to wake the loop.
const wakeIdent = 0

type kqueue struct {
	events []unix.Kevent_t
	fd     int
	filter int
}

func newBinding(interest Interest, capacity int) (binding, error) {
	kqueueFD, err := unix.Kqueue()
	if err != nil {
		return nil, os.NewSyscallError("kqueue", err)
	}
	// Provide FD_CLOEXEC flag for consistency with Go runtime.
	if _, err := unix.FcntlInt(uintptr(kqueueFD), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		unix.Close(kqueueFD)
		return nil, os.NewSyscallError("fcntl", err)
	}
	var evt unix.Kevent_t
	unix.SetKevent(&evt, wakeIdent, unix.EVFILT_USER, unix.EV_ADD|unix.EV_CLEAR)
	if _, err := unix.Kevent(kqueueFD, []unix.Kevent_t{evt}, nil, nil); err != nil {
		unix.Close(kqueueFD)
		return nil, os.NewSyscallError("kevent add|clear", err)
	}
	k := &kqueue{
		events: make([]unix.Kevent_t, capacity),
		fd:     kqueueFD,
		filter: unix.EVFILT_READ,
	}
	if interest == Writable {
		k.filter = unix.EVFILT_WRITE
	}
	return k, nil
}

// arm relies on EV_ADD both creating and re-arming a one-shot knote.
func (k *kqueue) arm(fd Descriptor) error {
	var evt unix.Kevent_t
	unix.SetKevent(&evt, int(fd), k.filter, unix.EV_ADD|unix.EV_ONESHOT)
	_, err := unix.Kevent(k.fd, []unix.Kevent_t{evt}, nil, nil)
	return os.NewSyscallError("kevent add|oneshot", err)
}

func (k *kqueue) disarm(fd Descriptor) error {
	var evt unix.Kevent_t
	unix.SetKevent(&evt, int(fd), k.filter, unix.EV_DELETE)
	_, err := unix.Kevent(k.fd, []unix.Kevent_t{evt}, nil, nil)
	if err == unix.ENOENT {
		return nil
	}
	return os.NewSyscallError("kevent delete", err)
}

func (k *kqueue) wait(ready []Descriptor) (int, error) {
	n, err := unix.Kevent(k.fd, nil, k.events, nil)
	if err == unix.EINTR {
		return 0, nil
	}
	if err != nil {
		return 0, os.NewSyscallError("kevent", err)
	}
	var m int
	for i := 0; i < n && m < len(ready); i++ {
		event := k.events[i]
		if event.Filter == unix.EVFILT_USER {
			metrics.Add(metrics.PollWakeups, 1)
			continue
		}
		// EV_EOF and EV_ERROR still count as a firing: the consumer re-queries.
		ready[m] = Descriptor(event.Ident)
		m++
	}
	return m, nil
}

func (k *kqueue) wake() error {
	var evt unix.Kevent_t
	unix.SetKevent(&evt, wakeIdent, unix.EVFILT_USER, 0)
	evt.Fflags = unix.NOTE_TRIGGER
	for {
		_, err := unix.Kevent(k.fd, []unix.Kevent_t{evt}, nil, nil)
		if err != unix.EINTR {
			return os.NewSyscallError("kevent trigger", err)
		}
	}
}

func (k *kqueue) close() error {
	return os.NewSyscallError("close", unix.Close(k.fd))
}
