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

const udpHeaderLen = 8

// UdpDatagram is a decoded UDP datagram. Only decode is required by this
// implementation's use cases; there is no Encode.
//
// Note for any future encoder: a computed-zero UDP checksum must be
// transmitted as 0xFFFF, never 0x0000, since 0x0000 means "no checksum" on
// the wire - unlike the IPv4 header and ICMP checksums, where 0x0000 is a
// legal result.
type UdpDatagram struct {
	SrcPort  uint16
	DstPort  uint16
	Length   uint16
	Checksum uint16
	Payload  []byte
}

// DecodeUDP decodes a UDP datagram out of buf (the IPv4 payload when
// protocol=17). buf is not retained.
func DecodeUDP(buf []byte) (*UdpDatagram, error) {
	if len(buf) < udpHeaderLen {
		return nil, fmt.Errorf("%w: udp header needs %d bytes, got %d", enc28j60err.MalformedFrame, udpHeaderLen, len(buf))
	}

	return &UdpDatagram{
		SrcPort:  binary.BigEndian.Uint16(buf[0:2]),
		DstPort:  binary.BigEndian.Uint16(buf[2:4]),
		Length:   binary.BigEndian.Uint16(buf[4:6]),
		Checksum: binary.BigEndian.Uint16(buf[6:8]),
		Payload:  append([]byte(nil), buf[8:]...),
	}, nil
}

func (d *UdpDatagram) encodeIPv4Payload() []byte {
	buf := make([]byte, udpHeaderLen+len(d.Payload))

	binary.BigEndian.PutUint16(buf[0:2], d.SrcPort)
	binary.BigEndian.PutUint16(buf[2:4], d.DstPort)
	binary.BigEndian.PutUint16(buf[4:6], d.Length)
	binary.BigEndian.PutUint16(buf[6:8], d.Checksum)
	copy(buf[8:], d.Payload)

	return buf
}
