// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package enc28j60

import "encoding/binary"

// Receive reads and dequeues a single packet from the on-chip RX ring. It
// returns (nil, nil) when no packet is pending. CRC-failed packets are
// discarded and also return (nil, nil).
//
// The 6-byte per-packet status header format (next-packet pointer, byte
// count including CRC, receive status vector, all little-endian) and the
// ERXRDPT free-space update rule are both adapted from a buffer descriptor
// ring's pop sequence, generalized from a DMA descriptor poll to an
// on-chip SRAM pointer read.
func (d *Driver) Receive() ([]byte, error) {
	count, err := d.readByte(EPKTCNT)
	if err != nil {
		return nil, err
	}

	if count == 0 {
		return nil, nil
	}

	if err := d.writeShort(ERDPTL, d.rxReadPtr); err != nil {
		return nil, err
	}

	header, err := d.readBufferMemory(headerSize)
	if err != nil {
		return nil, err
	}

	nextPacket := binary.LittleEndian.Uint16(header[0:2])
	byteCount := binary.LittleEndian.Uint16(header[2:4])
	status := binary.LittleEndian.Uint16(header[4:6])

	d.rxReadPtr = nextPacket

	var data []byte

	if byteCount >= 4 && status&RECEIVE_OK == RECEIVE_OK {
		data, err = d.readBufferMemory(int(byteCount - 4))
		if err != nil {
			return nil, err
		}
	}

	// Free the consumed space: ERXRDPT must point one below the
	// next-packet pointer, wrapping to ERXND rather than underflowing
	// below ERXST. The subtraction is done in uint16 space deliberately: a
	// next-packet pointer of 0x0000 underflows to 0xFFFF, which correctly
	// trips the "> ERXND" branch below instead of writing a bogus
	// negative offset.
	decremented := d.rxReadPtr - 1

	if decremented > RXSTOP_INIT {
		if err := d.writeShort(ERXRDPTL, RXSTOP_INIT); err != nil {
			return nil, err
		}
	} else {
		if err := d.writeShort(ERXRDPTL, decremented); err != nil {
			return nil, err
		}
	}

	if err := d.bitFieldSet(ECON2, 1<<ECON2_PKTDEC); err != nil {
		return nil, err
	}

	return data, nil
}

// RxReadPtr exposes the current RX read pointer, for tests that verify it
// advances and wraps correctly.
func (d *Driver) RxReadPtr() uint16 {
	return d.rxReadPtr
}
