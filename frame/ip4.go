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

// IP4Address is a 4-octet IPv4 address, immutable after construction;
// equality is octet-wise via ==.
type IP4Address [4]byte

// ParseIP4Address copies 4 octets out of buf into a new IP4Address.
func ParseIP4Address(buf []byte) (IP4Address, error) {
	var a IP4Address

	if len(buf) < 4 {
		return a, fmt.Errorf("%w: ipv4 address needs 4 bytes, got %d", enc28j60err.MalformedFrame, len(buf))
	}

	copy(a[:], buf[:4])

	return a, nil
}

// Bytes returns a freshly allocated copy of the address octets.
func (a IP4Address) Bytes() []byte {
	b := make([]byte, 4)
	copy(b, a[:])
	return b
}

// String renders the canonical dotted-decimal form.
func (a IP4Address) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3])
}
