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

// readPHY reads a PHY register through the indirect MII interface: write
// the target address to MIREGADR, request a read via MICMD.MIIRD, poll
// MISTAT.BUSY, clear MICMD, then combine MIRDL/MIRDH.
func (d *Driver) readPHY(addr uint8) (uint16, error) {
	if err := d.writeByte(MIREGADR, addr); err != nil {
		return 0, err
	}

	if err := d.writeByte(MICMD, 1<<MICMD_MIIRD); err != nil {
		return 0, err
	}

	if err := d.waitPHYIdle(); err != nil {
		return 0, err
	}

	if err := d.writeByte(MICMD, 0x00); err != nil {
		return 0, err
	}

	lo, err := d.readByte(MIRDL)
	if err != nil {
		return 0, err
	}

	hi, err := d.readByte(MIRDH)
	if err != nil {
		return 0, err
	}

	return uint16(hi)<<8 | uint16(lo), nil
}

// writePHY writes a PHY register: write MIREGADR, then MIWRL/MIWRH, then
// poll MISTAT.BUSY.
func (d *Driver) writePHY(addr uint8, value uint16) error {
	if err := d.writeByte(MIREGADR, addr); err != nil {
		return err
	}

	if err := d.writeShort(MIWRL, value); err != nil {
		return err
	}

	return d.waitPHYIdle()
}

func (d *Driver) waitPHYIdle() error {
	ok := timeout.Poll(phyTimeout, func() bool {
		status, err := d.readByte(MISTAT)
		return err == nil && !bits.Test(status, 1<<MISTAT_BUSY)
	})

	if !ok {
		return fmt.Errorf("%w: MISTAT.BUSY", enc28j60err.Timeout)
	}

	return nil
}
