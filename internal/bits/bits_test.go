// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package bits

import "testing"

func TestSetClear(t *testing.T) {
	var v uint8

	v = Set(v, 3)

	if v != 0x08 {
		t.Fatalf("Set: got %#02x, want 0x08", v)
	}

	v = Clear(v, 3)

	if v != 0x00 {
		t.Fatalf("Clear: got %#02x, want 0x00", v)
	}
}

func TestSetN(t *testing.T) {
	v := SetN(0xff, 5, 0b11, 0b10)

	// bits 5-6 replaced with 0b10, rest of 0xff untouched
	if v != 0b1_10_11111 {
		t.Fatalf("SetN: got %#08b, want %#08b", v, 0b1_10_11111)
	}
}

func TestGet(t *testing.T) {
	v := uint8(0b0110_0100)

	if got := Get(v, 5, 0b11); got != 0b11 {
		t.Fatalf("Get: got %#02b, want 0b11", got)
	}
}

func TestTest(t *testing.T) {
	if !Test(0b0000_0110, 0b0000_0100) {
		t.Fatal("Test: expected mask bit set")
	}

	if Test(0b0000_0010, 0b0000_0100) {
		t.Fatal("Test: expected mask bit clear")
	}
}
