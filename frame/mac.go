// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package frame

import (
	"fmt"

	"github.com/usbarmory/enc28j60/enc28j60err"
)

// MacAddress is a 6-octet Ethernet hardware address. It is immutable after
// construction; equality is octet-wise via ==.
type MacAddress [6]byte

// ParseMacAddress copies 6 octets out of buf into a new MacAddress. buf is
// never retained.
func ParseMacAddress(buf []byte) (MacAddress, error) {
	var m MacAddress

	if len(buf) < 6 {
		return m, fmt.Errorf("%w: mac address needs 6 bytes, got %d", enc28j60err.MalformedFrame, len(buf))
	}

	copy(m[:], buf[:6])

	return m, nil
}

// Bytes returns a freshly allocated copy of the address octets.
func (m MacAddress) Bytes() []byte {
	b := make([]byte, 6)
	copy(b, m[:])
	return b
}

// Broadcast reports whether m is the all-ones broadcast address.
func (m MacAddress) Broadcast() bool {
	return m == MacAddress{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
}

// String renders the canonical six-lowercase-hex-pair form.
func (m MacAddress) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}
