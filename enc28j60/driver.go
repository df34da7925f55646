// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package enc28j60 implements a driver for the Microchip ENC28J60
// SPI-attached Ethernet MAC+PHY controller: banked register access, the
// indirect MII (PHY) interface, on-chip SRAM ring partitioning, and framed
// packet send/receive.
//
// The register-driven structure here (address/bank constants, a
// SPI-primitives layer, then an Init sequence) follows the shape of an
// NXP ENET MAC driver, adapted from memory-mapped 32-bit registers
// accessed directly by the CPU to 8-bit registers accessed indirectly
// over a banked SPI control-register protocol, and its buffer descriptor
// ring handling adapted from a DMA descriptor ring to the on-chip SRAM
// read-pointer bookkeeping the ENC28J60 exposes instead.
package enc28j60

import (
	"fmt"
	"time"

	"github.com/usbarmory/enc28j60/enc28j60err"
	"github.com/usbarmory/enc28j60/frame"
	"github.com/usbarmory/enc28j60/internal/bits"
	"github.com/usbarmory/enc28j60/internal/spi"
	"github.com/usbarmory/enc28j60/internal/timeout"
)

// Recommended busy-wait bounds for PHY access, soft reset, and TX launch.
const (
	phyTimeout   = 10 * time.Millisecond
	resetTimeout = 100 * time.Millisecond
	txTimeout    = 100 * time.Millisecond
)

// unknownBank is the sentinel currentBank value before any real register
// access has happened, forcing the first access to emit a bank-select
// sequence.
const unknownBank = -1

// Driver owns the controller's SPI handle and its bank/ring bookkeeping:
// the station MAC address, the currently selected register bank, the RX
// read pointer, and a cached link state. It is not safe for concurrent use
// - the endpoint loop that owns it is single-threaded and polled.
type Driver struct {
	bus spi.Bus

	mac MacAddress

	currentBank int
	rxReadPtr   uint16

	linkUpCached *bool

	// txErrataPulses counts errata #12 full TXRST pulses (BFS then BFC)
	// issued on entry to Send, for diagnostics only.
	txErrataPulses int
	// txErrataClears counts errata #12 bare TXRST clears issued after a
	// TXRTS launch, for diagnostics only.
	txErrataClears int
	// bankSwitches counts bank-select sequences issued, for diagnostics
	// and to verify that repeated same-bank access avoids redundant
	// selects.
	bankSwitches int
}

// MacAddress is a local alias so callers of this package need not import
// package frame solely to pass a hardware address into New.
type MacAddress = frame.MacAddress

// New returns a Driver bound to bus, not yet initialized. mac is the local
// station address programmed into MAADR5..MAADR0 during Init.
func New(bus spi.Bus, mac MacAddress) *Driver {
	return &Driver{
		bus:         bus,
		mac:         mac,
		currentBank: unknownBank,
		rxReadPtr:   RXSTART_INIT,
	}
}

// BankSwitches reports how many bank-select sequences have been issued so
// far (diagnostics / testing only).
func (d *Driver) BankSwitches() int {
	return d.bankSwitches
}

// --- SPI primitives ---

func (d *Driver) xfer(op string, tx []byte) ([]byte, error) {
	rx, err := d.bus.Xfer(tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", enc28j60err.Bus, op, err)
	}

	return rx, nil
}

// readOp issues RCR for a register, appending the dummy byte MAC/MII
// registers require.
func (d *Driver) readOp(reg uint8) (uint8, error) {
	addr := reg & addrMask
	tx := []byte{opRCR | addr, 0x00}

	if reg&macMiiBit != 0 {
		tx = append(tx, 0x00)
	}

	rx, err := d.xfer("RCR", tx)
	if err != nil {
		return 0, err
	}

	return rx[len(rx)-1], nil
}

// writeOp issues WCR for a register.
func (d *Driver) writeOp(reg uint8, value uint8) error {
	addr := reg & addrMask
	_, err := d.xfer("WCR", []byte{opWCR | addr, value})
	return err
}

// bitFieldSet issues BFS; only valid for non-MAC/MII (ETH) registers.
func (d *Driver) bitFieldSet(reg uint8, mask uint8) error {
	addr := reg & addrMask
	_, err := d.xfer("BFS", []byte{opBFS | addr, mask})
	return err
}

// bitFieldClear issues BFC; only valid for non-MAC/MII (ETH) registers.
func (d *Driver) bitFieldClear(reg uint8, mask uint8) error {
	addr := reg & addrMask
	_, err := d.xfer("BFC", []byte{opBFC | addr, mask})
	return err
}

func (d *Driver) readBufferMemory(n int) ([]byte, error) {
	tx := make([]byte, n+1)
	tx[0] = opRBM

	rx, err := d.xfer("RBM", tx)
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), rx[1:]...), nil
}

func (d *Driver) writeBufferMemory(buf []byte) error {
	tx := make([]byte, len(buf)+1)
	tx[0] = opWBM
	copy(tx[1:], buf)

	_, err := d.xfer("WBM", tx)
	return err
}

func (d *Driver) softReset() error {
	if _, err := d.xfer("SRC", []byte{opSRC}); err != nil {
		return err
	}

	ok := timeout.Poll(resetTimeout, func() bool {
		status, err := d.readOp(ESTAT)
		return err == nil && bits.Test(status, 1<<ESTAT_CLKRDY)
	})

	if !ok {
		return fmt.Errorf("%w: soft reset CLKRDY", enc28j60err.Timeout)
	}

	return nil
}

// --- Bank switching ---

func (d *Driver) setBank(reg uint8) error {
	if commonRegisters[reg] {
		return nil
	}

	bank := int((reg & bankMask) >> 5)

	if bank == d.currentBank {
		return nil
	}

	if err := d.bitFieldClear(ECON1, 1<<ECON1_BSEL0|1<<ECON1_BSEL1); err != nil {
		return err
	}

	if err := d.bitFieldSet(ECON1, uint8(bank)<<ECON1_BSEL0); err != nil {
		return err
	}

	d.currentBank = bank
	d.bankSwitches++

	return nil
}

func (d *Driver) readByte(reg uint8) (uint8, error) {
	if err := d.setBank(reg); err != nil {
		return 0, err
	}

	return d.readOp(reg)
}

func (d *Driver) writeByte(reg uint8, value uint8) error {
	if err := d.setBank(reg); err != nil {
		return err
	}

	return d.writeOp(reg, value)
}

// writeShort writes a 16-bit register low byte then high byte, to addr and
// addr+1 respectively.
func (d *Driver) writeShort(reg uint8, value uint16) error {
	if err := d.writeByte(reg, uint8(value)); err != nil {
		return err
	}

	return d.writeByte(reg+1, uint8(value>>8))
}

func (d *Driver) readShort(reg uint8) (uint16, error) {
	lo, err := d.readByte(reg)
	if err != nil {
		return 0, err
	}

	hi, err := d.readByte(reg + 1)
	if err != nil {
		return 0, err
	}

	return uint16(hi)<<8 | uint16(lo), nil
}

// --- Initialization ---

// Init brings the controller up through soft reset, RX ring setup, TX
// window setup, MAC configuration, frame length, inter-frame gaps, station
// address programming, then enabling reception.
func (d *Driver) Init() error {
	if err := d.softReset(); err != nil {
		return err
	}

	if err := d.writeShort(ERXSTL, RXSTART_INIT); err != nil {
		return err
	}
	if err := d.writeShort(ERXRDPTL, RXSTART_INIT); err != nil {
		return err
	}
	if err := d.writeShort(ERXNDL, RXSTOP_INIT); err != nil {
		return err
	}
	d.rxReadPtr = RXSTART_INIT

	if err := d.writeShort(ETXSTL, TXSTART_INIT); err != nil {
		return err
	}
	if err := d.writeShort(ETXNDL, TXSTOP_INIT); err != nil {
		return err
	}

	if err := d.writeByte(MACON1, 1<<MACON1_MARXEN|1<<MACON1_TXPAUS|1<<MACON1_RXPAUS); err != nil {
		return err
	}
	if err := d.writeByte(MACON2, 0x00); err != nil {
		return err
	}
	// BFS/BFC are documented as ETH-register-only, but MACON3 is a
	// datasheet-documented exception where single-bit-set access is
	// still valid.
	if err := d.setBank(MACON3); err != nil {
		return err
	}
	if err := d.bitFieldSet(MACON3, 1<<MACON3_PADCFG0|1<<MACON3_TXCRCEN|1<<MACON3_FULDPX|1<<MACON3_FRMLNEN); err != nil {
		return err
	}

	if err := d.writeShort(MAMXFLL, MAX_FRAMELEN); err != nil {
		return err
	}

	if err := d.writeByte(MABBIPG, 0x15); err != nil {
		return err
	}
	if err := d.writeByte(MAIPGL, 0x12); err != nil {
		return err
	}

	macBytes := d.mac.Bytes()
	if err := d.writeByte(MAADR5, macBytes[0]); err != nil {
		return err
	}
	if err := d.writeByte(MAADR4, macBytes[1]); err != nil {
		return err
	}
	if err := d.writeByte(MAADR3, macBytes[2]); err != nil {
		return err
	}
	if err := d.writeByte(MAADR2, macBytes[3]); err != nil {
		return err
	}
	if err := d.writeByte(MAADR1, macBytes[4]); err != nil {
		return err
	}
	if err := d.writeByte(MAADR0, macBytes[5]); err != nil {
		return err
	}

	// MACON3 above forces full duplex; PHCON2.HDLDIS pairs with it to
	// disable the PHY's half-duplex transmit loopback, which would
	// otherwise echo every sent frame back into the RX ring.
	if err := d.writePHY(PHCON2, PHCON2_HDLDIS); err != nil {
		return err
	}

	if err := d.setBank(ECON1); err != nil {
		return err
	}
	if err := d.bitFieldSet(EIE, 1<<EIE_INTIE|1<<EIE_PKTIE); err != nil {
		return err
	}
	if err := d.bitFieldSet(ECON1, 1<<ECON1_RXEN); err != nil {
		return err
	}

	return nil
}

// Revision reads the chip silicon revision (EREVID).
func (d *Driver) Revision() (uint8, error) {
	return d.readByte(EREVID)
}

// IsLinkUp reads PHY register PHSTAT2 and reports the link status bit.
func (d *Driver) IsLinkUp() (bool, error) {
	value, err := d.readPHY(PHSTAT2)
	if err != nil {
		return false, err
	}

	up := value&PHSTAT2_LSTAT != 0
	d.linkUpCached = &up

	return up, nil
}
