// hostinfo.go - host architecture diagnostics for the -info flag

/*
hostinfo.go - host endianness/CPU diagnostics

RDRAM and every MMIO register in this module are fixed big-endian
regardless of host architecture (rdram.go uses encoding/binary.BigEndian
throughout), so this is purely informational: the -info flag prints the
host's actual CPU feature set next to a reminder that the wire format
never varies with it. Libraries: golang.org/x/sys/cpu.
*/

package main

import (
	"fmt"

	"golang.org/x/sys/cpu"
)

// PrintHostInfo reports host CPU feature flags relevant to interpreter
// performance (wide SIMD extensions help the vector-unit lane loops).
func PrintHostInfo() {
	fmt.Printf("wire format: big-endian (fixed, independent of host)\n")
	fmt.Printf("host CPU: X86.HasAVX2=%v ARM64.HasASIMD=%v\n", cpu.X86.HasAVX2, cpu.ARM64.HasASIMD)
}
