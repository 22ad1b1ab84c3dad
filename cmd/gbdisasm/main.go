// Command gbdisasm loads a flat ROM image and disassembles it from a given
// start address until the image runs out, the same shape as the teacher's
// disassembler command but with no C64 PRG/BASIC awareness -- a Game Boy
// cartridge image has no equivalent load header to detect.
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/jmchacon/gbcore/disasm"
)

var startPC = flag.Int("start_pc", 0x0100, "Address to start disassembling at")

type flatImage []uint8

func (f flatImage) Read(addr uint16) uint8 {
	if int(addr) >= len(f) {
		return 0xFF
	}
	return f[addr]
}

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-start_pc <PC>] <rom file>\n", os.Args[0])
		os.Exit(1)
	}

	b, err := ioutil.ReadFile(flag.Args()[0])
	if err != nil {
		log.Fatalf("can't open %s: %v", flag.Args()[0], err)
	}
	img := flatImage(b)

	pc := uint16(*startPC)
	cnt := int(pc)
	for cnt < len(b) {
		text, n := disasm.Step(pc, img)
		fmt.Printf("%.4X  %s\n", pc, text)
		pc += uint16(n)
		cnt += n
	}
}
