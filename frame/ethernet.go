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

// EtherTypes dispatched by DecodeEthernet.
const (
	EtherTypeIPv4 = 0x0800
	EtherTypeARP  = 0x0806
)

const ethernetHeaderLen = 14

// EthernetPayload is the tagged payload of an EthernetFrame: *IPv4Frame,
// *ArpFrame, or RawPayload.
type EthernetPayload interface {
	encodeEthernetPayload() []byte
}

// EthernetFrame is an Ethernet II frame. Padding the serialized payload to
// the 46-byte minimum is the driver's responsibility (MACON3 automatic
// padding), not the codec's, except where the ARP codec pads
// independently.
type EthernetFrame struct {
	Dst       MacAddress
	Src       MacAddress
	EtherType uint16
	Payload   EthernetPayload
}

// DecodeEthernet decodes an Ethernet II frame out of buf. buf is not
// retained; all returned values are copies. A frame shorter than 14 bytes
// is rejected as MalformedFrame.
func DecodeEthernet(buf []byte) (*EthernetFrame, error) {
	if len(buf) < ethernetHeaderLen {
		return nil, fmt.Errorf("%w: ethernet header needs %d bytes, got %d", enc28j60err.MalformedFrame, ethernetHeaderLen, len(buf))
	}

	dst, err := ParseMacAddress(buf[0:6])
	if err != nil {
		return nil, err
	}

	src, err := ParseMacAddress(buf[6:12])
	if err != nil {
		return nil, err
	}

	etherType := binary.BigEndian.Uint16(buf[12:14])
	rest := buf[14:]

	f := &EthernetFrame{
		Dst:       dst,
		Src:       src,
		EtherType: etherType,
	}

	switch etherType {
	case EtherTypeIPv4:
		ip4, err := DecodeIPv4(rest)
		if err != nil {
			return nil, err
		}
		f.Payload = ip4
	case EtherTypeARP:
		arp, err := DecodeArp(rest)
		if err != nil {
			return nil, err
		}
		f.Payload = arp
	default:
		f.Payload = RawPayload(append([]byte(nil), rest...))
	}

	return f, nil
}

// Encode serializes the 14-byte header followed by the payload. No FCS is
// appended; the controller adds it.
func (f *EthernetFrame) Encode() []byte {
	buf := make([]byte, ethernetHeaderLen)

	copy(buf[0:6], f.Dst.Bytes())
	copy(buf[6:12], f.Src.Bytes())
	binary.BigEndian.PutUint16(buf[12:14], f.EtherType)

	return append(buf, f.Payload.encodeEthernetPayload()...)
}
