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

// Standard Ethernet/IPv4 ARP field values: htype=1 (Ethernet), ptype=0x0800
// (IPv4), hlen=6, plen=4. Other values decode but this implementation
// never replies to them.
const (
	ArpHardwareEthernet = 1
	ArpProtocolIPv4      = 0x0800
	ArpHlenEthernet      = 6
	ArpPlenIPv4          = 4

	ArpOperRequest = 1
	ArpOperReply   = 2

	// arpMinPayload is the minimum Ethernet payload an ARP frame is
	// padded to: the codec guarantees this regardless of the driver's
	// own padding policy.
	arpMinPayload = 46
)

// ArpFrame mirrors RFC 826.
type ArpFrame struct {
	Htype uint16
	Ptype uint16
	Hlen  uint8
	Plen  uint8
	Oper  uint16
	SHA   MacAddress
	SPA   IP4Address
	THA   MacAddress
	TPA   IP4Address
}

// DecodeArp decodes an ARP packet (the Ethernet payload following the
// EtherType field) out of buf. buf is not retained.
func DecodeArp(buf []byte) (*ArpFrame, error) {
	if len(buf) < 8 {
		return nil, fmt.Errorf("%w: arp header needs 8 bytes, got %d", enc28j60err.MalformedFrame, len(buf))
	}

	a := &ArpFrame{
		Htype: binary.BigEndian.Uint16(buf[0:2]),
		Ptype: binary.BigEndian.Uint16(buf[2:4]),
		Hlen:  buf[4],
		Plen:  buf[5],
		Oper:  binary.BigEndian.Uint16(buf[6:8]),
	}

	pos := 8
	need := pos + 2*(int(a.Hlen)+int(a.Plen))

	if len(buf) < need {
		return nil, fmt.Errorf("%w: arp addresses need %d bytes, got %d", enc28j60err.MalformedFrame, need, len(buf))
	}

	if a.Hlen != ArpHlenEthernet || a.Plen != ArpPlenIPv4 {
		// Decodes fine but this implementation only replies to the
		// standard Ethernet/IPv4 case; the caller treats this value
		// as Unsupported for reply purposes.
		sha, _ := ParseMacAddress(zeroPad(buf[pos:], 6))
		a.SHA = sha
		return a, nil
	}

	sha, err := ParseMacAddress(buf[pos:])
	if err != nil {
		return nil, err
	}
	a.SHA = sha
	pos += int(a.Hlen)

	spa, err := ParseIP4Address(buf[pos:])
	if err != nil {
		return nil, err
	}
	a.SPA = spa
	pos += int(a.Plen)

	tha, err := ParseMacAddress(buf[pos:])
	if err != nil {
		return nil, err
	}
	a.THA = tha
	pos += int(a.Hlen)

	tpa, err := ParseIP4Address(buf[pos:])
	if err != nil {
		return nil, err
	}
	a.TPA = tpa

	return a, nil
}

// zeroPad returns buf extended to n bytes with zeros if it is shorter; used
// only for the non-standard hlen/plen path which is never replied to.
func zeroPad(buf []byte, n int) []byte {
	if len(buf) >= n {
		return buf[:n]
	}

	out := make([]byte, n)
	copy(out, buf)
	return out
}

// Encode serializes the ARP packet, then zero-pads the result to the
// minimum Ethernet payload length: the driver also pads via MACON3
// automatic padding, but the codec pads independently so the guarantee
// holds regardless of downstream padding policy.
func (a *ArpFrame) Encode() []byte {
	buf := make([]byte, 8, arpMinPayload)

	binary.BigEndian.PutUint16(buf[0:2], a.Htype)
	binary.BigEndian.PutUint16(buf[2:4], a.Ptype)
	buf[4] = a.Hlen
	buf[5] = a.Plen
	binary.BigEndian.PutUint16(buf[6:8], a.Oper)

	buf = append(buf, a.SHA.Bytes()...)
	buf = append(buf, a.SPA.Bytes()...)
	buf = append(buf, a.THA.Bytes()...)
	buf = append(buf, a.TPA.Bytes()...)

	if len(buf) < arpMinPayload {
		buf = append(buf, make([]byte, arpMinPayload-len(buf))...)
	}

	return buf
}

func (a *ArpFrame) encodeEthernetPayload() []byte {
	return a.Encode()
}

// IsStandard reports whether the frame uses the Ethernet/IPv4 hlen/plen
// this implementation understands well enough to reply to.
func (a *ArpFrame) IsStandard() bool {
	return a.Htype == ArpHardwareEthernet && a.Ptype == ArpProtocolIPv4 &&
		a.Hlen == ArpHlenEthernet && a.Plen == ArpPlenIPv4
}

// ReplyFor builds the ARP reply for a request addressed to localIP,
// answered by localMAC:
//
//	tha = req.sha, tpa = req.spa, sha = localMAC, spa = localIP, oper = reply
//
// ReplyFor returns an enc28j60err.Unsupported error if req is not a
// standard Ethernet/IPv4 frame, if req.Oper is not a request, or if req.TPA
// does not match localIP.
func (a *ArpFrame) ReplyFor(localMAC MacAddress, localIP IP4Address) (*ArpFrame, error) {
	if !a.IsStandard() {
		return nil, fmt.Errorf("%w: arp hlen/plen not Ethernet/IPv4", enc28j60err.Unsupported)
	}

	if a.Oper != ArpOperRequest {
		return nil, fmt.Errorf("%w: arp oper is not a request", enc28j60err.Unsupported)
	}

	if a.TPA != localIP {
		return nil, fmt.Errorf("%w: arp request not addressed to local ip", enc28j60err.Unsupported)
	}

	return &ArpFrame{
		Htype: a.Htype,
		Ptype: a.Ptype,
		Hlen:  a.Hlen,
		Plen:  a.Plen,
		Oper:  ArpOperReply,
		SHA:   localMAC,
		SPA:   localIP,
		THA:   a.SHA,
		TPA:   a.SPA,
	}, nil
}
