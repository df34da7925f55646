// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build linux

// Package platform provides the host-side backing for the interfaces
// package enc28j60 and package endpoint program against: the SPI transport
// and an optional INT-pin diagnostic read.
//
// Grounded on periph.io's own sysfs SPI port (other_examples' copy of
// periph.io/x/periph/host/sysfs/spi.go), adapted from the legacy
// periph.io/x/periph module layout to the split periph.io/x/conn/v3 +
// periph.io/x/host/v3 modules this project depends on.
package platform

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	enc28j60spi "github.com/usbarmory/enc28j60/internal/spi"
)

func init() {
	if _, err := host.Init(); err != nil {
		panic(fmt.Sprintf("platform: periph host init: %v", err))
	}
}

// maxClock is the ENC28J60's documented SPI speed ceiling.
const maxClock = 2 * physic.MegaHertz

// SPIBus opens the Linux spidev device at the given bus/chip-select index
// and returns it wrapped to satisfy enc28j60spi.Bus: 8-bit words, MSB
// first, mode 0, <=2MHz, CS active-low - spidev's default polarity.
func SPIBus(busIndex, chipSelect int) (enc28j60spi.Bus, error) {
	port, err := spireg.Open(fmt.Sprintf("/dev/spidev%d.%d", busIndex, chipSelect))
	if err != nil {
		return nil, fmt.Errorf("platform: spireg.Open: %w", err)
	}

	conn, err := port.Connect(maxClock, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("platform: spi.Connect: %w", err)
	}

	return &periphBus{port: port, conn: conn}, nil
}

type periphBus struct {
	mu   sync.Mutex
	port spi.PortCloser
	conn spi.Conn
}

// Xfer implements enc28j60spi.Bus.
func (b *periphBus) Xfer(tx []byte) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rx := make([]byte, len(tx))

	if err := b.conn.Tx(tx, rx); err != nil {
		return nil, &enc28j60spi.BusError{Op: "tx", Err: err}
	}

	return rx, nil
}

// Close releases the underlying spidev handle.
func (b *periphBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port.Close()
}
