// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/usbarmory/enc28j60/enc28j60err"
)

// ICMP echo type codes.
const (
	IcmpEchoReply   = 0
	IcmpEchoRequest = 8
)

const icmpHeaderLen = 8

// IcmpDatagram is an ICMP echo request/reply; only the echo message class
// is modeled.
type IcmpDatagram struct {
	Type     uint8
	Code     uint8
	Checksum uint16
	ID       uint16
	Sequence uint16
	Payload  []byte
}

// DecodeICMP decodes an ICMP datagram out of buf (the IPv4 payload when
// protocol=1). buf is not retained.
func DecodeICMP(buf []byte) (*IcmpDatagram, error) {
	if len(buf) < icmpHeaderLen {
		return nil, fmt.Errorf("%w: icmp header needs %d bytes, got %d", enc28j60err.MalformedFrame, icmpHeaderLen, len(buf))
	}

	return &IcmpDatagram{
		Type:     buf[0],
		Code:     buf[1],
		Checksum: binary.BigEndian.Uint16(buf[2:4]),
		ID:       binary.BigEndian.Uint16(buf[4:6]),
		Sequence: binary.BigEndian.Uint16(buf[6:8]),
		Payload:  append([]byte(nil), buf[8:]...),
	}, nil
}

// Encode serializes the ICMP datagram, recomputing the checksum over the
// whole datagram (header with the checksum field zeroed, plus payload).
func (d *IcmpDatagram) Encode() []byte {
	buf := make([]byte, icmpHeaderLen+len(d.Payload))

	buf[0] = d.Type
	buf[1] = d.Code
	// buf[2:4] checksum left zero for computation
	binary.BigEndian.PutUint16(buf[4:6], d.ID)
	binary.BigEndian.PutUint16(buf[6:8], d.Sequence)
	copy(buf[8:], d.Payload)

	checksum := Checksum(buf)
	binary.BigEndian.PutUint16(buf[2:4], checksum)

	return buf
}

func (d *IcmpDatagram) encodeIPv4Payload() []byte {
	return d.Encode()
}

// EchoReply builds the echo reply for an echo request: id, sequence and
// payload are cloned, type is set to 0 and the checksum recomputed.
func EchoReply(req *IcmpDatagram) (*IcmpDatagram, error) {
	if req.Type != IcmpEchoRequest {
		return nil, fmt.Errorf("%w: icmp type %d is not an echo request", enc28j60err.Unsupported, req.Type)
	}

	return &IcmpDatagram{
		Type:     IcmpEchoReply,
		Code:     0,
		ID:       req.ID,
		Sequence: req.Sequence,
		Payload:  append([]byte(nil), req.Payload...),
	}, nil
}
