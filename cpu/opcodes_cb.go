package cpu

// The CB-prefixed page is fully regular: each of the four 64-entry bands
// (rotate/shift, BIT, RES, SET) is itself eight rows of eight registers in
// the same B,C,D,E,H,L,(HL),A order as the primary page, so the whole page
// is built from loops rather than literal entries.

func cbShiftOp(which func(*Chip, uint8) uint8, src uint8) opcodeFunc {
	return func(c *Chip, bus Bus) (int, error) {
		v := which(c, c.reg8(bus, src))
		c.setReg8(bus, src, v)
		c.setFlag(FlagZ, v == 0)
		if src == 6 {
			return 16, nil
		}
		return 8, nil
	}
}

func cbBit(b, src uint8) opcodeFunc {
	return func(c *Chip, bus Bus) (int, error) {
		c.bit(b, c.reg8(bus, src))
		if src == 6 {
			return 12, nil
		}
		return 8, nil
	}
}

func cbRes(b, src uint8) opcodeFunc {
	return func(c *Chip, bus Bus) (int, error) {
		c.setReg8(bus, src, c.reg8(bus, src)&^(1<<b))
		if src == 6 {
			return 16, nil
		}
		return 8, nil
	}
}

func cbSet(b, src uint8) opcodeFunc {
	return func(c *Chip, bus Bus) (int, error) {
		c.setReg8(bus, src, c.reg8(bus, src)|(1<<b))
		if src == 6 {
			return 16, nil
		}
		return 8, nil
	}
}

func initCBTable(regNames [8]string) {
	shiftOps := [8]func(*Chip, uint8) uint8{
		(*Chip).rlc, (*Chip).rrc, (*Chip).rl, (*Chip).rr,
		(*Chip).sla, (*Chip).sra, (*Chip).swap, (*Chip).srl,
	}
	shiftNames := [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

	for row := uint8(0); row < 8; row++ {
		for src := uint8(0); src < 8; src++ {
			op := row*0x08 + src
			prefixedTable[op] = opcodeEntry{cbShiftOp(shiftOps[row], src), shiftNames[row] + " " + regNames[src]}
		}
	}

	for b := uint8(0); b < 8; b++ {
		for src := uint8(0); src < 8; src++ {
			prefixedTable[0x40+b*0x08+src] = opcodeEntry{cbBit(b, src), "BIT"}
			prefixedTable[0x80+b*0x08+src] = opcodeEntry{cbRes(b, src), "RES"}
			prefixedTable[0xC0+b*0x08+src] = opcodeEntry{cbSet(b, src), "SET"}
		}
	}
}
