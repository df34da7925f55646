// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package enc28j60err defines the error kinds shared by the driver, codec
// and endpoint loop.
package enc28j60err

import "errors"

var (
	// Bus indicates an underlying SPI transport failure. Fatal to the
	// current operation; the endpoint loop stops and returns it.
	Bus = errors.New("enc28j60: bus error")

	// Timeout indicates a status poll exceeded its bound (MISTAT.BUSY,
	// ESTAT.CLKRDY, ECON1.TXRTS).
	Timeout = errors.New("enc28j60: timeout waiting for status bit")

	// MalformedFrame indicates the codec could not decode a frame; the
	// frame is dropped and the loop continues.
	MalformedFrame = errors.New("enc28j60: malformed frame")

	// ChecksumMismatch names a failed checksum check. The ICMP/IPv4
	// decoders accept frames regardless of their checksum and never return
	// it; frame.VerifyChecksum reports checksum validity as a bool.
	ChecksumMismatch = errors.New("enc28j60: checksum mismatch")

	// Unsupported indicates a frame decoded correctly but is not handled
	// by this implementation (IPv6, fragmented IPv4, non-standard ARP
	// hardware/protocol lengths). Silently ignored by the loop.
	Unsupported = errors.New("enc28j60: unsupported frame")
)
