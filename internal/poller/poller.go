// Tencent is pleased to support the open source community by making tRPC available.
// Copyright (C) 2023 THL A29 Limited, a Tencent company. All rights reserved.
// If you have downloaded a copy of the tRPC source code from Tencent,
// please note that tRPC source code is licensed under the Apache 2.0 License,
// A copy of the Apache 2.0 License is included in this file.

// Package poller provides one-shot readiness pollers over epoll and kqueue.
//
// A Poller watches a single Interest. Every Register arms the descriptor for
// exactly one notification; once the Poller's loop has invoked the callback
// the descriptor stays disarmed until it is registered again.
package poller

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"trpc.group/trpc-go/tpoll/log"
	"trpc.group/trpc-go/tpoll/metrics"
)

// Descriptor is a consumer-owned file descriptor. Pollers never open or close it.
type Descriptor int

// Interest is the readiness condition a Poller watches.
type Interest int

// Constants for Interest.
const (
	Readable Interest = iota
	Writable
)

// String implements fmt.Stringer.
func (i Interest) String() string {
	switch i {
	case Readable:
		return "Readable"
	case Writable:
		return "Writable"
	default:
		return fmt.Sprintf("Interest(%d)", int(i))
	}
}

func (i Interest) valid() bool {
	return i == Readable || i == Writable
}

// PolledFunc is invoked from the Poller's loop once per firing of fd.
// It must not block for long: it delays every other descriptor of the Poller.
type PolledFunc func(fd Descriptor) error

// Errors returned by pollers.
var (
	ErrPollerClosed        = errors.New("poller is closed")
	ErrFacility            = errors.New("readiness facility failure")
	ErrUnsupportedPlatform = errors.New("readiness facility is not supported on this platform")
	ErrInvalidCapacity     = errors.New("batch capacity must be positive")
)

// GoschedAfterEvent decides whether to call runtime.Gosched() after each dispatched event.
// It can only be set inside func init().
var GoschedAfterEvent bool

const (
	stateRunning int32 = iota
	stateClosing
	stateFailed
)

// Poller owns one readiness facility and the goroutine that waits on it.
type Poller struct {
	// mu guards the binding's lifetime: Register and Deregister hold it for
	// reading, the loop takes it for writing before releasing the binding.
	mu       sync.RWMutex
	binding  binding
	ready    []Descriptor
	polled   PolledFunc
	armed    armTable
	onFault  func(id int, err error)
	done     chan struct{}
	err      atomic.Error
	faulted  atomic.Bool
	state    atomic.Int32
	interest Interest
	id       int
	strict   bool
}

// New creates a Poller watching interest and starts its loop.
func New(interest Interest, polled PolledFunc, opts ...Option) (*Poller, error) {
	if !interest.valid() {
		return nil, errors.Errorf("unknown interest %s", interest)
	}
	if polled == nil {
		return nil, errors.New("polled callback is nil")
	}
	o := newOptions(opts...)
	if o.capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	b := o.binding
	if b == nil {
		var err error
		if b, err = newBinding(interest, o.capacity); err != nil {
			return nil, err
		}
	}
	p := &Poller{
		binding:  b,
		ready:    make([]Descriptor, o.capacity),
		polled:   polled,
		onFault:  o.onFault,
		done:     make(chan struct{}),
		interest: interest,
		id:       o.id,
		strict:   o.strict,
	}
	go p.run()
	return p, nil
}

// Interest returns the readiness condition watched by p.
func (p *Poller) Interest() Interest {
	return p.interest
}

// ID returns the shard index of p inside its Group, or zero.
func (p *Poller) ID() int {
	return p.id
}

// String implements fmt.Stringer.
func (p *Poller) String() string {
	return fmt.Sprintf("poller[%d/%s]", p.id, p.interest)
}

// Done is closed once the loop of p has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// Err returns the fault that stopped p, nil if p is running or was closed normally.
func (p *Poller) Err() error {
	return p.err.Load()
}

// Armed reports whether fd is registered and has not fired since.
func (p *Poller) Armed(fd Descriptor) bool {
	return p.armed.armed(fd)
}

// Register arms fd for one notification. Registering an armed descriptor again
// is harmless. A facility failure faults the Poller and is returned.
func (p *Poller) Register(fd Descriptor) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state.Load() != stateRunning {
		return ErrPollerClosed
	}
	metrics.Add(metrics.RegisterCalls, 1)
	// The bit goes first: the kernel may fire before arm returns.
	p.armed.arm(fd)
	if err := p.binding.arm(fd); err != nil {
		p.armed.disarm(fd)
		err = errors.Wrapf(fault(err), "%s register fd %d", p, fd)
		p.fail(err)
		return err
	}
	return nil
}

// Deregister removes fd from p. It reports whether fd was armed; a fired
// descriptor that was not registered again is not armed. Deregistering a
// descriptor that is not armed is never an error, even if it has been closed.
func (p *Poller) Deregister(fd Descriptor) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state.Load() != stateRunning {
		return false, ErrPollerClosed
	}
	metrics.Add(metrics.DeregisterCalls, 1)
	if !p.armed.known(fd) {
		metrics.Add(metrics.DeregisterUnarmed, 1)
		return false, nil
	}
	armed := p.armed.disarm(fd)
	if !armed {
		metrics.Add(metrics.DeregisterUnarmed, 1)
	}
	if err := p.binding.disarm(fd); err != nil {
		// The facility drops a closed descriptor by itself.
		if !armed && errors.Is(err, syscall.EBADF) {
			p.armed.forget(fd)
			return false, nil
		}
		err = errors.Wrapf(fault(err), "%s deregister fd %d", p, fd)
		p.fail(err)
		return armed, err
	}
	p.armed.forget(fd)
	return armed, nil
}

// Close stops the loop and releases the facility. A callback that is running
// is not interrupted; Close waits for it, so it must not be called from the
// PolledFunc of the same Poller. If the loop cannot be woken p keeps running
// and the error is returned.
func (p *Poller) Close() error {
	if !p.state.CompareAndSwap(stateRunning, stateClosing) {
		<-p.done
		return ErrPollerClosed
	}
	if err := p.binding.wake(); err != nil {
		p.state.CompareAndSwap(stateClosing, stateRunning)
		return errors.Wrapf(fault(err), "%s close", p)
	}
	<-p.done
	return nil
}

func (p *Poller) run() {
	defer p.release()
	log.Debugf("%s: loop started, batch capacity %d", p, len(p.ready))
	for {
		n, err := p.binding.wait(p.ready)
		if err != nil {
			p.fail(errors.Wrapf(fault(err), "%s wait", p))
			return
		}
		if p.state.Load() != stateRunning {
			return
		}
		metrics.Add(metrics.PollWaitCalls, 1)
		metrics.Add(metrics.PollWaitEvents, uint64(n))
		for _, fd := range p.ready[:n] {
			if !p.armed.fire(fd) {
				metrics.Add(metrics.StaleEvents, 1)
				continue
			}
			p.dispatch(fd)
			if p.state.Load() == stateFailed {
				return
			}
			if GoschedAfterEvent {
				runtime.Gosched()
			}
		}
	}
}

func (p *Poller) dispatch(fd Descriptor) {
	metrics.Add(metrics.CallbackCalls, 1)
	defer func() {
		if r := recover(); r != nil {
			metrics.Add(metrics.CallbackPanics, 1)
			p.callbackFailed(fd, errors.Errorf("panic: %v", r))
		}
	}()
	if err := p.polled(fd); err != nil {
		metrics.Add(metrics.CallbackErrors, 1)
		p.callbackFailed(fd, err)
	}
}

func (p *Poller) callbackFailed(fd Descriptor, err error) {
	if p.strict {
		p.fail(errors.Wrapf(err, "%s polled fd %d", p, fd))
		return
	}
	log.Errorf("%s: polled fd %d: %+v", p, fd, err)
}

// fail records the first fault and stops the loop. Later faults are only logged.
func (p *Poller) fail(err error) {
	if !p.faulted.CompareAndSwap(false, true) {
		log.Errorf("%s: further fault after stop: %v", p, err)
		return
	}
	p.err.Store(err)
	p.state.Store(stateFailed)
	metrics.Add(metrics.PollerFaults, 1)
	log.Errorf("FATAL %s stopped, its descriptors will never be dispatched again: %+v", p, err)
	if p.onFault != nil {
		go p.onFault(p.id, err)
	}
	if werr := p.binding.wake(); werr != nil {
		log.Errorf("%s: wake after fault: %v", p, werr)
	}
}

func (p *Poller) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Load() == stateRunning {
		p.state.Store(stateClosing)
	}
	if err := p.binding.close(); err != nil {
		log.Warnf("%s: close facility: %v", p, err)
	}
	close(p.done)
	log.Debugf("%s: loop exited", p)
}

// faultError marks a native failure so that errors.Is(err, ErrFacility) holds
// while the syscall cause stays reachable through Unwrap.
type faultError struct {
	cause error
}

func fault(err error) error {
	return &faultError{cause: err}
}

func (e *faultError) Error() string        { return e.cause.Error() }
func (e *faultError) Unwrap() error        { return e.cause }
func (e *faultError) Is(target error) bool { return target == ErrFacility }
