// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build linux

package platform

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// IntPin is an optional, purely diagnostic read of the ENC28J60's INT pin:
// the IRQ line is an optimization this implementation doesn't depend on,
// since the endpoint loop busy-polls EPKTCNT and EIR regardless. It never
// gates control flow.
//
// Uses github.com/warthog618/go-gpiocdev, chosen over periph.io's own gpio
// package because it maps directly onto the Linux gpiochip character
// device the INT line is exposed through.
type IntPin struct {
	line *gpiocdev.Line
}

// OpenIntPin requests offset on the named gpiochip device (e.g.
// "gpiochip0") as an input, edge-insensitive diagnostic line.
func OpenIntPin(chip string, offset int) (*IntPin, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsInput)
	if err != nil {
		return nil, fmt.Errorf("platform: gpiocdev.RequestLine: %w", err)
	}

	return &IntPin{line: line}, nil
}

// Asserted reports whether INT is currently asserted (active-low per the
// ENC28J60 datasheet: a reading of 0 means asserted). Errors are non-fatal
// to callers that only use this for diagnostics.
func (p *IntPin) Asserted() (bool, error) {
	v, err := p.line.Value()
	if err != nil {
		return false, fmt.Errorf("platform: gpio read: %w", err)
	}

	return v == 0, nil
}

// Close releases the underlying gpiochip line handle.
func (p *IntPin) Close() error {
	return p.line.Close()
}
