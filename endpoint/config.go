// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package endpoint implements the polled Ethernet/ARP/ICMP responder loop:
// it owns an enc28j60.Driver, decodes inbound frames through package frame,
// and answers ARP requests and ICMP echo requests addressed to a configured
// local MAC/IPv4 pair.
//
// The single-threaded accept-dispatch-repeat shape follows a top-level
// command-line server loop (a blocking read-dispatch cycle driven by
// flag-configured behavior, not a worker pool), generalized to a
// single-threaded non-blocking poll with no goroutines.
package endpoint

import (
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/usbarmory/enc28j60/frame"
)

// Device is the subset of *enc28j60.Driver the loop depends on. Kept as an
// interface so the loop can be tested against a fake without any SPI
// machinery.
type Device interface {
	Receive() ([]byte, error)
	Send(data []byte) error
	IsLinkUp() (bool, error)
	Revision() (uint8, error)
}

// IntPin is the subset of platform.IntPin the loop depends on, kept as an
// interface so the loop can be tested without a gpiochip device. It is
// polled purely for diagnostics - its value never gates control flow, since
// the loop polls the chip's EPKTCNT/EIR regardless of what INT reports.
type IntPin interface {
	Asserted() (bool, error)
}

// Config is the host-facing configuration: local station address, local
// IPv4 address, and an optional source-MAC filter. The SPI bus/chip-select
// indices that select the transport are package platform's concern, not
// this package's.
type Config struct {
	LocalMAC frame.MacAddress
	LocalIP  frame.IP4Address

	// SourceFilter, if non-nil, causes frames whose source MAC does not
	// match to be dropped before dispatch.
	SourceFilter *frame.MacAddress

	// LinkDownPoll is the wait between link-state polls while the link
	// is down. Defaults to one second when zero.
	LinkDownPoll time.Duration

	// IntPin, if non-nil, is sampled once per poll iteration and its
	// assertions counted in Stats.IntAsserted; purely diagnostic.
	IntPin IntPin

	// ReplyLimiter, if non-nil, caps the rate of ARP and ICMP echo
	// replies the loop will send: a reply that would exceed it is
	// dropped and counted in Stats.RepliesThrottled rather than sent.
	// Guards against a host on the segment turning the responder into
	// an amplifier for a flood of requests. nil disables throttling.
	ReplyLimiter *rate.Limiter

	// Logger receives startup, dispatch and error diagnostics. Defaults
	// to log.Default() when nil.
	Logger *log.Logger
}

func (c *Config) linkDownPoll() time.Duration {
	if c.LinkDownPoll > 0 {
		return c.LinkDownPoll
	}
	return time.Second
}

func (c *Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
