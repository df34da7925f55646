// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package endpoint

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	// Registers /debug/charts on the default mux, giving the endpoint's
	// process live packet-rate graphs alongside the JSON counters below.
	_ "github.com/mkevac/debugcharts"
)

// Stats are the endpoint loop's running counters, safe for concurrent read
// while the loop updates them: the loop itself is single-threaded, but an
// HTTP stats handler reads these from another goroutine.
type Stats struct {
	PacketsReceived   atomic.Uint64
	PacketsSent       atomic.Uint64
	MalformedFrames   atomic.Uint64
	FilteredFrames    atomic.Uint64
	UnsupportedFrames atomic.Uint64
	ArpRepliesSent    atomic.Uint64
	IcmpRepliesSent   atomic.Uint64
	LinkDownPolls     atomic.Uint64
	BusErrors         atomic.Uint64
	IntAsserted       atomic.Uint64
	RepliesThrottled  atomic.Uint64
}

// snapshot is the JSON-serializable view returned by ServeHTTP.
type snapshot struct {
	PacketsReceived   uint64 `json:"packets_received"`
	PacketsSent       uint64 `json:"packets_sent"`
	MalformedFrames   uint64 `json:"malformed_frames"`
	FilteredFrames    uint64 `json:"filtered_frames"`
	UnsupportedFrames uint64 `json:"unsupported_frames"`
	ArpRepliesSent    uint64 `json:"arp_replies_sent"`
	IcmpRepliesSent   uint64 `json:"icmp_replies_sent"`
	LinkDownPolls     uint64 `json:"link_down_polls"`
	BusErrors         uint64 `json:"bus_errors"`
	IntAsserted       uint64 `json:"int_asserted"`
	RepliesThrottled  uint64 `json:"replies_throttled"`
}

func (s *Stats) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(snapshot{
		PacketsReceived:   s.PacketsReceived.Load(),
		PacketsSent:       s.PacketsSent.Load(),
		MalformedFrames:   s.MalformedFrames.Load(),
		FilteredFrames:    s.FilteredFrames.Load(),
		UnsupportedFrames: s.UnsupportedFrames.Load(),
		ArpRepliesSent:    s.ArpRepliesSent.Load(),
		IcmpRepliesSent:   s.IcmpRepliesSent.Load(),
		LinkDownPolls:     s.LinkDownPolls.Load(),
		BusErrors:         s.BusErrors.Load(),
		IntAsserted:       s.IntAsserted.Load(),
		RepliesThrottled:  s.RepliesThrottled.Load(),
	})
}

// ListenAndServe starts a JSON stats endpoint at "/stats" on addr. The
// debugcharts import above registers "/debug/charts" on the same default
// mux, so it rides along automatically. It blocks; callers run it in their
// own goroutine.
func (s *Stats) ListenAndServe(addr string) error {
	http.Handle("/stats", s)
	return http.ListenAndServe(addr, nil)
}
