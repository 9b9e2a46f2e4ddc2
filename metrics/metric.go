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

// Package metrics provides tpoll runtime counters, such as the number of
// events drained per wait or the number of stale events dropped, which help
// with sizing batches and shards.
package metrics

import (
	"time"

	"go.uber.org/atomic"
	"trpc.group/trpc-go/tpoll/log"
)

// All metrics definitions.
const (
	// The following constants are wait loop metrics.

	PollWaitCalls = iota
	PollWaitEvents
	PollWakeups
	StaleEvents

	// The following constants are registration metrics.

	RegisterCalls
	RegisterAddFallback
	DeregisterCalls
	DeregisterUnarmed

	// The following constants are callback metrics.

	CallbackCalls
	CallbackErrors
	CallbackPanics
	OffloadTasks

	// PollerFaults counts pollers stopped by an unrecoverable error.
	PollerFaults

	// Keep it last.

	Max
)

var (
	metrics [Max]atomic.Uint64
)

// Add metrics counter.
func Add(name int, delta uint64) {
	if name < 0 || name >= Max {
		return
	}
	metrics[name].Add(delta)
}

// Get one metric counter.
func Get(name int) uint64 {
	if name < 0 || name >= Max {
		return 0
	}
	return metrics[name].Load()
}

// GetAll get all metrics.
func GetAll() [Max]uint64 {
	var m [Max]uint64
	for i := range metrics {
		m[i] = metrics[i].Load()
	}
	return m
}

// ShowMetricsOfPeriod shows metric info of duration d from now on.
// It will block d duration, and then prints metrics info.
func ShowMetricsOfPeriod(d time.Duration) {
	old := GetAll()
	<-time.After(d)
	now := GetAll()
	var m [Max]uint64
	for i := range metrics {
		m[i] = now[i] - old[i]
	}
	showAll(m)
}

// ShowMetrics shows metric info in console.
func ShowMetrics() {
	showAll(GetAll())
}

func showAll(m [Max]uint64) {
	log.Debug("######### tpoll metrics (", time.Now().Format("2006-01-02 15:04:05"), ") ###########")
	showWaitMetrics(m)
	showRegisterMetrics(m)
	showCallbackMetrics(m)
	log.Debugf("%-59s: %d", "# number of pollers stopped by a fault", m[PollerFaults])
}

func showWaitMetrics(m [Max]uint64) {
	log.Debugf("%-59s: %d", "# WAIT - number of wait returns", m[PollWaitCalls])
	log.Debugf("%-59s: %d", "# WAIT - number of total events", m[PollWaitEvents])
	log.Debugf("%-59s: %d", "# WAIT - number of wakeups", m[PollWakeups])
	log.Debugf("%-59s: %d", "# WAIT - number of stale events dropped", m[StaleEvents])
	if m[PollWaitCalls] > 0 {
		log.Debugf("%-59s: %.2f", "# WAIT - average events number per wait",
			float64(m[PollWaitEvents])/float64(m[PollWaitCalls]))
	}
}

func showRegisterMetrics(m [Max]uint64) {
	log.Debugf("%-59s: %d", "# REGISTER - number of register calls", m[RegisterCalls])
	log.Debugf("%-59s: %d", "# REGISTER - number of add fallbacks (tag:a)", m[RegisterAddFallback])
	if m[RegisterCalls] > 0 {
		log.Debugf("%-59s: %.2f%%", "# REGISTER - a/register * 100%",
			float64(m[RegisterAddFallback])*100/float64(m[RegisterCalls]))
	}
	log.Debugf("%-59s: %d", "# REGISTER - number of deregister calls", m[DeregisterCalls])
	log.Debugf("%-59s: %d", "# REGISTER - number of deregister on unarmed fd", m[DeregisterUnarmed])
}

func showCallbackMetrics(m [Max]uint64) {
	log.Debugf("%-59s: %d", "# CALLBACK - number of polled calls", m[CallbackCalls])
	log.Debugf("%-59s: %d", "# CALLBACK - number of polled errors", m[CallbackErrors])
	log.Debugf("%-59s: %d", "# CALLBACK - number of polled panics", m[CallbackPanics])
	log.Debugf("%-59s: %d", "# CALLBACK - number of offloaded tasks", m[OffloadTasks])
}
