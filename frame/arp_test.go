// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package frame

import (
	"bytes"
	"testing"

	"pgregory.net/rapid"
)

// TestArpReplyForLocalTarget decodes a request for 10.0.1.254 and checks
// the reply is byte-for-byte correct for local MAC 02:03:04:05:06:07.
func TestArpReplyForLocalTarget(t *testing.T) {
	reqBytes := []byte{
		0x00, 0x01, 0x08, 0x00, 0x06, 0x04, 0x00, 0x01,
		0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
		0x0a, 0x00, 0x01, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x0a, 0x00, 0x01, 0xfe,
	}

	req, err := DecodeArp(reqBytes)
	if err != nil {
		t.Fatalf("DecodeArp: %v", err)
	}

	localMAC := MacAddress{0x02, 0x03, 0x04, 0x05, 0x06, 0x07}
	localIP := IP4Address{10, 0, 1, 254}

	reply, err := req.ReplyFor(localMAC, localIP)
	if err != nil {
		t.Fatalf("ReplyFor: %v", err)
	}

	want := []byte{
		0x00, 0x01, 0x08, 0x00, 0x06, 0x04, 0x00, 0x02,
		0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
		0x0a, 0x00, 0x01, 0xfe,
		0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
		0x0a, 0x00, 0x01, 0x01,
	}
	want = append(want, make([]byte, 18)...)

	got := reply.Encode()

	if !bytes.Equal(got, want) {
		t.Fatalf("Encode() = % x\nwant        % x", got, want)
	}

	if reply.Oper != ArpOperReply {
		t.Fatalf("Oper = %d, want %d", reply.Oper, ArpOperReply)
	}
	if reply.SHA != localMAC {
		t.Fatalf("SHA = %v, want %v", reply.SHA, localMAC)
	}
	if reply.SPA != localIP {
		t.Fatalf("SPA = %v, want %v", reply.SPA, localIP)
	}
	if reply.THA != req.SHA {
		t.Fatalf("THA = %v, want %v", reply.THA, req.SHA)
	}
	if reply.TPA != req.SPA {
		t.Fatalf("TPA = %v, want %v", reply.TPA, req.SPA)
	}
}

// TestArpReplyNonMatchingTarget checks that a request for an IP that is
// not ours yields no reply.
func TestArpReplyNonMatchingTarget(t *testing.T) {
	reqBytes := []byte{
		0x00, 0x01, 0x08, 0x00, 0x06, 0x04, 0x00, 0x01,
		0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
		0x0a, 0x00, 0x01, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x0a, 0x00, 0x01, 0x05,
	}

	req, err := DecodeArp(reqBytes)
	if err != nil {
		t.Fatalf("DecodeArp: %v", err)
	}

	localIP := IP4Address{10, 0, 1, 254}

	if _, err := req.ReplyFor(MacAddress{}, localIP); err == nil {
		t.Fatal("ReplyFor: expected error for non-matching tpa, got nil")
	}
}

func randMac(t *rapid.T, label string) MacAddress {
	var m MacAddress
	bs := rapid.SliceOfN(rapid.Byte(), 6, 6).Draw(t, label)
	copy(m[:], bs)
	return m
}

func randIP(t *rapid.T, label string) IP4Address {
	var a IP4Address
	bs := rapid.SliceOfN(rapid.Byte(), 4, 4).Draw(t, label)
	copy(a[:], bs)
	return a
}

// TestArpRoundTripProperty checks that for any well-formed ARP request
// with tpa = localIP, decode(encode(replyFor(req))) == replyFor(req).
func TestArpRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		localMAC := randMac(t, "localMAC")
		localIP := randIP(t, "localIP")
		senderMAC := randMac(t, "senderMAC")
		senderIP := randIP(t, "senderIP")

		req := &ArpFrame{
			Htype: ArpHardwareEthernet,
			Ptype: ArpProtocolIPv4,
			Hlen:  ArpHlenEthernet,
			Plen:  ArpPlenIPv4,
			Oper:  ArpOperRequest,
			SHA:   senderMAC,
			SPA:   senderIP,
			THA:   MacAddress{},
			TPA:   localIP,
		}

		reply, err := req.ReplyFor(localMAC, localIP)
		if err != nil {
			t.Fatalf("ReplyFor: %v", err)
		}

		decoded, err := DecodeArp(reply.Encode())
		if err != nil {
			t.Fatalf("DecodeArp(Encode()): %v", err)
		}

		if *decoded != *reply {
			t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", decoded, reply)
		}

		if reply.Oper != ArpOperReply {
			t.Fatalf("Oper = %d, want reply", reply.Oper)
		}
		if reply.SHA != localMAC || reply.SPA != localIP {
			t.Fatalf("sha/spa not local: %v/%v", reply.SHA, reply.SPA)
		}
		if reply.THA != senderMAC || reply.TPA != senderIP {
			t.Fatalf("tha/tpa not swapped: %v/%v", reply.THA, reply.TPA)
		}
	})
}
