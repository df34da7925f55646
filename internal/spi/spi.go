// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package spi defines the full-duplex byte-exchange contract the ENC28J60
// driver (package enc28j60) needs from a host SPI transport.
//
// The transport itself - bus configuration, chip-select discipline, the
// physical ioctl/mmio path - is an external collaborator. This package only
// pins down the interface the driver programs against, plus the production
// backing in package platform.
package spi

import "fmt"

// Bus is a full-duplex SPI byte-exchange primitive. Xfer clocks out tx and
// simultaneously clocks in a reply of identical length; chip-select is
// asserted for the full duration of one Xfer call and released on return.
//
// Implementations must configure: active-low CS, 8 bits per word, MSB
// first, single-wire full duplex, no loopback, mode 0, at most 2 MHz.
type Bus interface {
	Xfer(tx []byte) (rx []byte, err error)
}

// BusError wraps a transport-level failure reported by a Bus implementation.
type BusError struct {
	Op  string
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("spi: %s: %v", e.Op, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}
