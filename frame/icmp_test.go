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

// TestIcmpEchoReplyEndToEnd exercises an echo request through reply
// encoding, decoding, and checksum verification at both the ICMP and
// wrapping IPv4 layers.
func TestIcmpEchoReplyEndToEnd(t *testing.T) {
	req := &IcmpDatagram{
		Type:     IcmpEchoRequest,
		Code:     0,
		ID:       1,
		Sequence: 7,
		Payload:  []byte{0x48, 0x69},
	}

	reqBytes := req.Encode()

	decodedReq, err := DecodeICMP(reqBytes)
	if err != nil {
		t.Fatalf("DecodeICMP: %v", err)
	}

	if !VerifyChecksum(reqBytes) {
		t.Fatalf("request checksum does not verify: % x", reqBytes)
	}

	reply, err := EchoReply(decodedReq)
	if err != nil {
		t.Fatalf("EchoReply: %v", err)
	}

	replyBytes := reply.Encode()

	wantPrefix := []byte{0x00, 0x00}
	if !bytes.Equal(replyBytes[0:2], wantPrefix) {
		t.Fatalf("reply type/code = % x, want 00 00", replyBytes[0:2])
	}

	if !bytes.Equal(replyBytes[4:], []byte{0x00, 0x01, 0x00, 0x07, 0x48, 0x69}) {
		t.Fatalf("reply id/seq/payload = % x", replyBytes[4:])
	}

	if !VerifyChecksum(replyBytes) {
		t.Fatalf("reply checksum does not verify: % x", replyBytes)
	}

	ipReq := &IPv4Frame{
		TTL:      64,
		Protocol: ProtocolICMP,
		Src:      IP4Address{10, 0, 1, 1},
		Dst:      IP4Address{10, 0, 1, 254},
		Payload:  req,
	}
	ipReqBytes := ipReq.Encode()

	decodedIPReq, err := DecodeIPv4(ipReqBytes)
	if err != nil {
		t.Fatalf("DecodeIPv4: %v", err)
	}

	if decodedIPReq.TotalLength != 30 {
		t.Fatalf("total_length = %d, want 30", decodedIPReq.TotalLength)
	}

	ipReply := &IPv4Frame{
		TTL:      64,
		Protocol: ProtocolICMP,
		Src:      decodedIPReq.Dst,
		Dst:      decodedIPReq.Src,
		Payload:  reply,
	}
	ipReplyBytes := ipReply.Encode()

	if !VerifyChecksum(ipReplyBytes[:20]) {
		t.Fatalf("reply ip header checksum does not verify")
	}
}

// TestIcmpEchoReplyProperty checks that echo_reply(req).payload ==
// req.payload, id == req.id, seq == req.sequence, type == 0, and the
// checksum verifies, across randomized requests.
func TestIcmpEchoReplyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		req := &IcmpDatagram{
			Type:     IcmpEchoRequest,
			Code:     0,
			ID:       uint16(rapid.Uint16().Draw(t, "id")),
			Sequence: uint16(rapid.Uint16().Draw(t, "seq")),
			Payload:  rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "payload"),
		}

		reply, err := EchoReply(req)
		if err != nil {
			t.Fatalf("EchoReply: %v", err)
		}

		if reply.Type != IcmpEchoReply {
			t.Fatalf("Type = %d, want 0", reply.Type)
		}
		if reply.ID != req.ID {
			t.Fatalf("ID = %d, want %d", reply.ID, req.ID)
		}
		if reply.Sequence != req.Sequence {
			t.Fatalf("Sequence = %d, want %d", reply.Sequence, req.Sequence)
		}
		if !bytes.Equal(reply.Payload, req.Payload) {
			t.Fatalf("Payload = % x, want % x", reply.Payload, req.Payload)
		}

		if !VerifyChecksum(reply.Encode()) {
			t.Fatal("reply checksum does not verify")
		}
	})
}
