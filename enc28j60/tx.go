// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package enc28j60

import (
	"fmt"

	"github.com/usbarmory/enc28j60/enc28j60err"
	"github.com/usbarmory/enc28j60/internal/bits"
	"github.com/usbarmory/enc28j60/internal/timeout"
)

// perPacketControlByte is written immediately before the frame bytes in the
// TX window; all zero selects the MAC-configured defaults.
const perPacketControlByte = 0x00

// Send transmits a single Ethernet frame through the on-chip TX window,
// applying the errata #12 workaround: if EIR.TXERIF is already set on
// entry, ECON1.TXRST is pulsed (BFS then BFC) before the write; if TXERIF
// reappears after TXRTS is launched, only a bare TXRST clear (BFC, no BFS)
// is issued as cleanup.
//
// The busy-wait-then-launch shape is adapted from a buffer descriptor
// ring's transmit path, generalized from polling a DMA descriptor's ready
// bit to polling ECON1.TXRTS.
func (d *Driver) Send(data []byte) error {
	txerif, err := d.txerifSet()
	if err != nil {
		return err
	}

	if txerif {
		if err := d.pulseTxReset(); err != nil {
			return err
		}
	}

	ok := timeout.Poll(txTimeout, func() bool {
		status, err := d.readByte(ECON1)
		return err == nil && !bits.Test(status, 1<<ECON1_TXRTS)
	})

	if !ok {
		return fmt.Errorf("%w: ECON1.TXRTS clear", enc28j60err.Timeout)
	}

	if err := d.writeShort(EWRPTL, TXSTART_INIT); err != nil {
		return err
	}
	if err := d.writeShort(ETXNDL, TXSTART_INIT+uint16(len(data))); err != nil {
		return err
	}

	if err := d.writeBufferMemory(append([]byte{perPacketControlByte}, data...)); err != nil {
		return err
	}

	if err := d.bitFieldSet(ECON1, 1<<ECON1_TXRTS); err != nil {
		return err
	}

	txerif, err = d.txerifSet()
	if err != nil {
		return err
	}

	if txerif {
		if err := d.bitFieldClear(ECON1, 1<<ECON1_TXRST); err != nil {
			return err
		}
		d.txErrataClears++
	}

	return nil
}

func (d *Driver) txerifSet() (bool, error) {
	eir, err := d.readByte(EIR)
	if err != nil {
		return false, err
	}

	return bits.Test(eir, 1<<EIR_TXERIF), nil
}

// pulseTxReset implements the entry half of errata #12: set then clear
// ECON1.TXRST to unwedge a transmit logic lockup.
func (d *Driver) pulseTxReset() error {
	if err := d.bitFieldSet(ECON1, 1<<ECON1_TXRST); err != nil {
		return err
	}
	if err := d.bitFieldClear(ECON1, 1<<ECON1_TXRST); err != nil {
		return err
	}

	d.txErrataPulses++

	return nil
}
