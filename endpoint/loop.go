// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package endpoint

import (
	"context"
	"errors"
	"time"

	"github.com/usbarmory/enc28j60/enc28j60err"
	"github.com/usbarmory/enc28j60/frame"
)

// minEthernetFrame is the smallest frame the loop will attempt to decode.
const minEthernetFrame = 14

// Loop runs the single-threaded, cooperatively-polled responder: no
// goroutines, no channels, no locking beyond Stats' atomics for the
// optional HTTP reader.
type Loop struct {
	dev    Device
	cfg    Config
	Stats  Stats
	linkUp bool
}

// New returns a Loop bound to dev. Initializing the device is the caller's
// responsibility before calling Run; Run itself reads and logs the chip
// revision.
func New(dev Device, cfg Config) *Loop {
	return &Loop{dev: dev, cfg: cfg}
}

// Run polls until ctx is cancelled and then returns ctx.Err(). It returns
// earlier only when the device fails: an error from Revision or IsLinkUp,
// or a Bus or Timeout error from Receive. A failed reply Send is logged
// and does not stop the loop, and neither does a malformed or unsupported
// frame.
func (l *Loop) Run(ctx context.Context) error {
	log := l.cfg.logger()

	rev, err := l.dev.Revision()
	if err != nil {
		return err
	}
	log.Info("enc28j60 initialized", "revision", rev)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		up, err := l.dev.IsLinkUp()
		if err != nil {
			l.Stats.BusErrors.Add(1)
			return err
		}

		if up != l.linkUp {
			log.Info("link state changed", "up", up)
			l.linkUp = up
		}

		if !up {
			l.Stats.LinkDownPolls.Add(1)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.cfg.linkDownPoll()):
			}

			continue
		}

		if err := l.pollOnce(); err != nil {
			l.Stats.BusErrors.Add(1)
			return err
		}
	}
}

// pollOnce performs one RX poll and, if a frame arrived, decodes and
// dispatches it. Bus/Timeout errors from the driver propagate; malformed
// frames are logged and counted, and unsupported frames are counted, without
// stopping the loop.
func (l *Loop) pollOnce() error {
	log := l.cfg.logger()

	if l.cfg.IntPin != nil {
		if asserted, err := l.cfg.IntPin.Asserted(); err == nil && asserted {
			l.Stats.IntAsserted.Add(1)
		}
	}

	data, err := l.dev.Receive()
	if err != nil {
		if errors.Is(err, enc28j60err.Bus) || errors.Is(err, enc28j60err.Timeout) {
			return err
		}
		log.Warn("receive failed", "err", err)
		return nil
	}

	if data == nil {
		return nil
	}

	l.Stats.PacketsReceived.Add(1)

	if len(data) < minEthernetFrame {
		l.Stats.MalformedFrames.Add(1)
		log.Warn("short frame dropped", "len", len(data))
		return nil
	}

	eth, err := frame.DecodeEthernet(data)
	if err != nil {
		l.Stats.MalformedFrames.Add(1)
		log.Warn("malformed frame dropped", "err", err)
		return nil
	}

	if l.cfg.SourceFilter != nil && eth.Src != *l.cfg.SourceFilter {
		l.Stats.FilteredFrames.Add(1)
		return nil
	}

	l.dispatch(eth)

	return nil
}

// dispatch answers ARP requests and ICMP echo requests; everything else is
// observed only.
func (l *Loop) dispatch(eth *frame.EthernetFrame) {
	log := l.cfg.logger()

	switch payload := eth.Payload.(type) {
	case *frame.ArpFrame:
		reply, err := payload.ReplyFor(l.cfg.LocalMAC, l.cfg.LocalIP)
		if err != nil {
			l.Stats.UnsupportedFrames.Add(1)
			return
		}

		if !l.replyAllowed() {
			return
		}

		if err := l.send(eth.Src, l.cfg.LocalMAC, frame.EtherTypeARP, reply); err != nil {
			log.Error("arp reply send failed", "err", err)
			return
		}

		l.Stats.ArpRepliesSent.Add(1)

	case *frame.IPv4Frame:
		if payload.Dst != l.cfg.LocalIP {
			return
		}

		// Fragments (MF set or a non-zero offset) are not reassembled and
		// never answered.
		if payload.Flags&0x1 != 0 || payload.FragmentOffset != 0 {
			l.Stats.UnsupportedFrames.Add(1)
			return
		}

		icmp, ok := payload.Payload.(*frame.IcmpDatagram)
		if !ok {
			return
		}

		reply, err := frame.EchoReply(icmp)
		if err != nil {
			l.Stats.UnsupportedFrames.Add(1)
			return
		}

		ipReply := &frame.IPv4Frame{
			TTL:      64,
			Protocol: frame.ProtocolICMP,
			Src:      payload.Dst,
			Dst:      payload.Src,
			Payload:  reply,
		}

		if !l.replyAllowed() {
			return
		}

		if err := l.send(eth.Src, l.cfg.LocalMAC, frame.EtherTypeIPv4, ipReply); err != nil {
			log.Error("icmp reply send failed", "err", err)
			return
		}

		l.Stats.IcmpRepliesSent.Add(1)

	default:
		// Unknown ethertypes (RawPayload): observed only.
	}
}

// replyAllowed reports whether a reply may be sent under the configured
// ReplyLimiter, counting a denial in Stats.RepliesThrottled.
func (l *Loop) replyAllowed() bool {
	if l.cfg.ReplyLimiter == nil {
		return true
	}

	if l.cfg.ReplyLimiter.Allow() {
		return true
	}

	l.Stats.RepliesThrottled.Add(1)

	return false
}

func (l *Loop) send(dst, src frame.MacAddress, etherType uint16, payload frame.EthernetPayload) error {
	out := &frame.EthernetFrame{Dst: dst, Src: src, EtherType: etherType, Payload: payload}

	if err := l.dev.Send(out.Encode()); err != nil {
		return err
	}

	l.Stats.PacketsSent.Add(1)

	return nil
}
