// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package frame

import (
	"testing"

	"pgregory.net/rapid"
)

// TestEthernetRoundTripProperty checks that for any frame with a supported
// payload variant, decode(encode(f)).dst_mac/src_mac/ethertype survive
// round trip.
func TestEthernetRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dst := randMac(t, "dst")
		src := randMac(t, "src")

		var f *EthernetFrame

		switch rapid.IntRange(0, 2).Draw(t, "kind") {
		case 0:
			f = &EthernetFrame{
				Dst: dst, Src: src, EtherType: EtherTypeARP,
				Payload: &ArpFrame{
					Htype: ArpHardwareEthernet, Ptype: ArpProtocolIPv4,
					Hlen: ArpHlenEthernet, Plen: ArpPlenIPv4,
					Oper: ArpOperRequest,
					SHA:  randMac(t, "sha"), SPA: randIP(t, "spa"),
					THA: randMac(t, "tha"), TPA: randIP(t, "tpa"),
				},
			}
		case 1:
			f = &EthernetFrame{
				Dst: dst, Src: src, EtherType: EtherTypeIPv4,
				Payload: &IPv4Frame{
					TTL: 64, Protocol: 0,
					Src: randIP(t, "ipsrc"), Dst: randIP(t, "ipdst"),
					Payload: RawPayload(rapid.SliceOfN(rapid.Byte(), 0, 16).Draw(t, "raw")),
				},
			}
		default:
			f = &EthernetFrame{
				Dst: dst, Src: src, EtherType: 0x1234,
				Payload: RawPayload(rapid.SliceOfN(rapid.Byte(), 0, 16).Draw(t, "raw")),
			}
		}

		decoded, err := DecodeEthernet(f.Encode())
		if err != nil {
			t.Fatalf("DecodeEthernet(Encode()): %v", err)
		}

		if decoded.Dst != f.Dst {
			t.Fatalf("Dst = %v, want %v", decoded.Dst, f.Dst)
		}
		if decoded.Src != f.Src {
			t.Fatalf("Src = %v, want %v", decoded.Src, f.Src)
		}
		if decoded.EtherType != f.EtherType {
			t.Fatalf("EtherType = %#04x, want %#04x", decoded.EtherType, f.EtherType)
		}
	})
}

func TestDecodeEthernetRejectsShortFrame(t *testing.T) {
	if _, err := DecodeEthernet(make([]byte, 13)); err == nil {
		t.Fatal("expected error for 13-byte frame")
	}
}
