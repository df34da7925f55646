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

// IPv4 protocol numbers this implementation dispatches on.
const (
	ProtocolICMP = 1
	ProtocolUDP  = 17
)

const ipv4HeaderLen = 20

// IPv4Payload is the tagged payload of an IPv4Frame: *IcmpDatagram,
// *UdpDatagram, or RawPayload.
type IPv4Payload interface {
	encodeIPv4Payload() []byte
}

// RawPayload is an opaque, unparsed payload carried by EthernetFrame or
// IPv4Frame when the protocol/ethertype is not one this implementation
// interprets.
type RawPayload []byte

func (p RawPayload) encodeEthernetPayload() []byte { return []byte(p) }
func (p RawPayload) encodeIPv4Payload() []byte     { return []byte(p) }

// IPv4Frame is an IPv4 header plus tagged payload.
type IPv4Frame struct {
	Version        uint8
	IHL            uint8
	TOS            uint8
	TotalLength    uint16
	ID             uint16
	Flags          uint8
	FragmentOffset uint16
	TTL            uint8
	Protocol       uint8
	HeaderChecksum uint16
	Src            IP4Address
	Dst            IP4Address
	// Options holds (IHL-5)*4 opaque bytes, preserved but not
	// interpreted.
	Options []byte
	Payload IPv4Payload
}

// DecodeIPv4 decodes an IPv4 datagram out of buf (the Ethernet payload
// following EtherType 0x0800). buf is not retained.
func DecodeIPv4(buf []byte) (*IPv4Frame, error) {
	if len(buf) < ipv4HeaderLen {
		return nil, fmt.Errorf("%w: ipv4 header needs %d bytes, got %d", enc28j60err.MalformedFrame, ipv4HeaderLen, len(buf))
	}

	f := &IPv4Frame{
		Version:        buf[0] >> 4,
		IHL:            buf[0] & 0x0F,
		TOS:            buf[1],
		TotalLength:    binary.BigEndian.Uint16(buf[2:4]),
		ID:             binary.BigEndian.Uint16(buf[4:6]),
		Flags:          buf[6] >> 5,
		FragmentOffset: (uint16(buf[6]&0x1F) << 8) | uint16(buf[7]),
		TTL:            buf[8],
		Protocol:       buf[9],
		HeaderChecksum: binary.BigEndian.Uint16(buf[10:12]),
	}

	src, err := ParseIP4Address(buf[12:16])
	if err != nil {
		return nil, err
	}
	f.Src = src

	dst, err := ParseIP4Address(buf[16:20])
	if err != nil {
		return nil, err
	}
	f.Dst = dst

	if int(f.TotalLength) > len(buf) {
		return nil, fmt.Errorf("%w: ipv4 total_length %d exceeds buffer of %d bytes", enc28j60err.MalformedFrame, f.TotalLength, len(buf))
	}

	headerLen := int(f.IHL) * 4

	if headerLen < ipv4HeaderLen || headerLen > len(buf) {
		return nil, fmt.Errorf("%w: ipv4 ihl %d out of range", enc28j60err.MalformedFrame, f.IHL)
	}

	if headerLen > ipv4HeaderLen {
		f.Options = append([]byte(nil), buf[ipv4HeaderLen:headerLen]...)
	}

	if int(f.TotalLength) < headerLen {
		return nil, fmt.Errorf("%w: ipv4 total_length %d shorter than header %d", enc28j60err.MalformedFrame, f.TotalLength, headerLen)
	}

	payload := buf[headerLen:f.TotalLength]

	switch f.Protocol {
	case ProtocolICMP:
		icmp, err := DecodeICMP(payload)
		if err != nil {
			return nil, err
		}
		f.Payload = icmp
	case ProtocolUDP:
		udp, err := DecodeUDP(payload)
		if err != nil {
			return nil, err
		}
		f.Payload = udp
	default:
		f.Payload = RawPayload(append([]byte(nil), payload...))
	}

	return f, nil
}

// Encode serializes the IPv4 datagram, computing IHL, total length and the
// header checksum. Version is always set to 4. TTL is taken as-is:
// decrementing it for a forwarded frame, or setting it to 64 for a locally
// generated reply, is the caller's responsibility.
func (f *IPv4Frame) Encode() []byte {
	ihl := uint8(5 + len(f.Options)/4)
	payload := f.Payload.encodeIPv4Payload()
	totalLength := uint16(int(ihl)*4 + len(payload))

	header := make([]byte, int(ihl)*4)

	header[0] = (4 << 4) | ihl
	header[1] = f.TOS
	binary.BigEndian.PutUint16(header[2:4], totalLength)
	binary.BigEndian.PutUint16(header[4:6], f.ID)
	header[6] = (f.Flags << 5) | byte(f.FragmentOffset>>8)
	header[7] = byte(f.FragmentOffset)
	header[8] = f.TTL
	header[9] = f.Protocol
	// header[10:12] checksum left zero for computation
	copy(header[12:16], f.Src.Bytes())
	copy(header[16:20], f.Dst.Bytes())
	copy(header[20:], f.Options)

	checksum := Checksum(header)
	binary.BigEndian.PutUint16(header[10:12], checksum)

	return append(header, payload...)
}

func (f *IPv4Frame) encodeEthernetPayload() []byte {
	return f.Encode()
}
