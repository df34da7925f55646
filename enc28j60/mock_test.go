// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package enc28j60

// mockChip is a behavioral SPI-bus stand-in for the ENC28J60's control and
// buffer-memory protocol, used so the driver tests exercise real
// bank-switch/opcode sequencing without real hardware: a small hand-rolled
// fake rather than a mocking framework.
type mockChip struct {
	regs map[int]uint8 // resolved (bank*32+addr, or addr for common) -> value

	sram         [0x2000]byte
	readPtr      uint16
	writePtr     uint16
	sentFrames   [][]byte
	txErrEachBFS bool // simulate a transmit error flagged right after TXRTS
}

func newMockChip() *mockChip {
	return &mockChip{regs: make(map[int]uint8)}
}

func (m *mockChip) bank() int {
	return int(m.regs[ECON1] & 0x03)
}

func (m *mockChip) resolve(addr uint8) int {
	if commonRegisters[addr] {
		return int(addr)
	}
	return m.bank()*32 + int(addr&addrMask)
}

func (m *mockChip) get(addr uint8) uint8 {
	return m.regs[m.resolve(addr)]
}

// setBanked presets a register living in a specific bank, independent of
// whichever bank the mock is currently parked in - for test setup only,
// where the driver hasn't yet issued the bank-select that a real access
// would require.
func (m *mockChip) setBanked(bank int, addr uint8, value uint8) {
	if commonRegisters[addr] {
		m.regs[int(addr)] = value
		return
	}

	m.regs[bank*32+int(addr&addrMask)] = value
}

func (m *mockChip) set(addr uint8, value uint8) {
	key := m.resolve(addr)
	m.regs[key] = value

	switch addr {
	case ERDPTL:
		m.readPtr = uint16(value) | m.readPtr&0xFF00
	case ERDPTH:
		m.readPtr = uint16(value)<<8 | m.readPtr&0x00FF
	case EWRPTL:
		m.writePtr = uint16(value) | m.writePtr&0xFF00
	case EWRPTH:
		m.writePtr = uint16(value)<<8 | m.writePtr&0x00FF
	}
}

func (m *mockChip) Xfer(tx []byte) ([]byte, error) {
	if len(tx) == 0 {
		return nil, nil
	}

	switch tx[0] {
	case opSRC:
		m.regs[int(ESTAT)] = 1 << ESTAT_CLKRDY
		return make([]byte, len(tx)), nil

	case opRBM:
		rx := make([]byte, len(tx))
		for i := 1; i < len(tx); i++ {
			rx[i] = m.sram[m.readPtr]
			m.readPtr++
		}
		return rx, nil

	case opWBM:
		for i := 1; i < len(tx); i++ {
			m.sram[m.writePtr] = tx[i]
			m.writePtr++
		}
		return make([]byte, len(tx)), nil
	}

	addr := tx[0] & addrMask
	op := tx[0] &^ addrMask

	rx := make([]byte, len(tx))

	switch op {
	case opRCR:
		rx[len(rx)-1] = m.get(addr)

	case opWCR:
		m.set(addr, tx[1])

	case opBFS:
		m.set(addr, m.get(addr)|tx[1])

		if addr == ECON1 {
			if tx[1]&(1<<ECON1_TXRST) != 0 {
				m.set(EIR, m.get(EIR)&^(1<<EIR_TXERIF))
			}
			if tx[1]&(1<<ECON1_TXRTS) != 0 && m.txErrEachBFS {
				m.set(EIR, m.get(EIR)|1<<EIR_TXERIF)
			}
		}

	case opBFC:
		m.set(addr, m.get(addr)&^tx[1])
	}

	return rx, nil
}
