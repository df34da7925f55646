// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package enc28j60

// Register addressing: a register constant packs the 5-bit on-chip address
// (addrMask), the 2-bit bank number in bits 5-6 (bankMask),
// and a high bit marking MAC/MII registers, whose first read returns a
// stale byte and therefore needs a dummy byte appended to the SPI
// transaction.
const (
	addrMask  = 0x1F
	bankMask  = 0x60
	macMiiBit = 0x80
)

// commonRegisters are mapped identically in every bank and never require a
// bank-select sequence.
var commonRegisters = map[uint8]bool{
	EIE:   true,
	EIR:   true,
	ESTAT: true,
	ECON2: true,
	ECON1: true,
}

// Bank 0.
const (
	ERDPTL   = 0x00
	ERDPTH   = 0x01
	EWRPTL   = 0x02
	EWRPTH   = 0x03
	ETXSTL   = 0x04
	ETXSTH   = 0x05
	ETXNDL   = 0x06
	ETXNDH   = 0x07
	ERXSTL   = 0x08
	ERXSTH   = 0x09
	ERXNDL   = 0x0A
	ERXNDH   = 0x0B
	ERXRDPTL = 0x0C
	ERXRDPTH = 0x0D
)

// Bank 1.
const (
	ERXFCON = 1<<5 | 0x18
	EPKTCNT = 1<<5 | 0x19
)

// Bank 2: MAC configuration and MII management registers (all MAC/MII).
const (
	MACON1   = macMiiBit | 2<<5 | 0x00
	MACON2   = macMiiBit | 2<<5 | 0x01
	MACON3   = macMiiBit | 2<<5 | 0x02
	MACON4   = macMiiBit | 2<<5 | 0x03
	MABBIPG  = macMiiBit | 2<<5 | 0x04
	MAIPGL   = macMiiBit | 2<<5 | 0x06
	MAIPGH   = macMiiBit | 2<<5 | 0x07
	MAMXFLL  = macMiiBit | 2<<5 | 0x0A
	MAMXFLH  = macMiiBit | 2<<5 | 0x0B
	MICMD    = macMiiBit | 2<<5 | 0x12
	MIREGADR = macMiiBit | 2<<5 | 0x14
	MIWRL    = macMiiBit | 2<<5 | 0x16
	MIWRH    = macMiiBit | 2<<5 | 0x17
	MIRDL    = macMiiBit | 2<<5 | 0x18
	MIRDH    = macMiiBit | 2<<5 | 0x19
	MISTAT   = macMiiBit | 2<<5 | 0x1A
)

// Bank 3: station address registers (MAC/MII) and chip revision (plain).
const (
	MAADR5 = macMiiBit | 3<<5 | 0x00
	MAADR4 = macMiiBit | 3<<5 | 0x01
	MAADR3 = macMiiBit | 3<<5 | 0x02
	MAADR2 = macMiiBit | 3<<5 | 0x03
	MAADR1 = macMiiBit | 3<<5 | 0x04
	MAADR0 = macMiiBit | 3<<5 | 0x05
	EREVID = 3<<5 | 0x12
)

// Common (every-bank) registers.
const (
	EIE   = 0x1B
	EIR   = 0x1C
	ESTAT = 0x1D
	ECON2 = 0x1E
	ECON1 = 0x1F
)

// ECON1 bit positions.
const (
	ECON1_BSEL0 = 0
	ECON1_BSEL1 = 1
	ECON1_RXEN  = 2
	ECON1_TXRTS = 3
	ECON1_TXRST = 7
)

// ECON2 bit positions.
const (
	ECON2_PKTDEC = 6
)

// EIE bit positions.
const (
	EIE_INTIE = 7
	EIE_PKTIE = 6
)

// EIR bit positions.
const (
	EIR_TXERIF = 1
)

// ESTAT bit positions.
const (
	ESTAT_CLKRDY = 0
)

// MACON1 bit positions.
const (
	MACON1_MARXEN = 0
	MACON1_RXPAUS = 2
	MACON1_TXPAUS = 3
)

// MACON3 bit positions.
const (
	MACON3_FULDPX   = 0
	MACON3_FRMLNEN  = 1
	MACON3_TXCRCEN  = 4
	MACON3_PADCFG0  = 5
)

// MICMD bit positions.
const (
	MICMD_MIIRD = 0
)

// MISTAT bit positions.
const (
	MISTAT_BUSY = 0
)

// Receive status vector bits (last two bytes of the 6-byte per-packet
// header, after the next-packet pointer and the byte count).
const (
	RECEIVE_OK = 0x0080
)

// PHY (MII) register addresses, on the indirect MII address space - not
// part of the SPI control-register address space above.
const (
	PHCON1  = 0x00
	PHSTAT1 = 0x01
	PHCON2  = 0x10
	PHSTAT2 = 0x11
)

// PHSTAT2 link status bit.
const PHSTAT2_LSTAT = 0x0400

// PHCON2 half-duplex loopback disable bit.
const PHCON2_HDLDIS = 0x0100

// SPI opcodes for the control-register and buffer-memory protocol.
const (
	opRCR = 0x00
	opRBM = 0x3A
	opWCR = 0x40
	opWBM = 0x7A
	opBFS = 0x80
	opBFC = 0xA0
	opSRC = 0xFF
)

// On-chip SRAM layout. ERXST must be 0 per silicon errata #5.
const (
	RXSTART_INIT = 0x0000
	RXSTOP_INIT  = 0x0BFF
	TXSTART_INIT = 0x0C00
	TXSTOP_INIT  = 0x11FF
)

// MAX_FRAMELEN is the maximum accepted frame length (MAMXFL): 1500 bytes,
// the standard Ethernet MTU.
const MAX_FRAMELEN = 1500

// headerSize is the 6-byte per-packet RX status header: next-packet
// pointer, byte count (incl. CRC), receive status vector, all
// little-endian on the wire.
const headerSize = 6
