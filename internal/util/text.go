// Package util has small output helpers shared by the CLI commands.
package util

import (
	"fmt"
	"strings"
)

// HexDump renders data as a 16-bytes-per-line hex dump. Lines are
// addressed from base, so dumps of device memory show real device
// addresses.
func HexDump(base uint, data []byte) string {
	var b strings.Builder
	for i := 0; i < len(data); i += 16 {
		fmt.Fprintf(&b, "%04x  ", base+uint(i))

		for j := 0; j < 16; j++ {
			if i+j < len(data) {
				fmt.Fprintf(&b, "%02x ", data[i+j])
			} else {
				b.WriteString("   ")
			}
			if j == 7 {
				b.WriteByte(' ')
			}
		}

		b.WriteString(" |")
		for j := 0; j < 16 && i+j < len(data); j++ {
			c := data[i+j]
			if c >= 32 && c < 127 {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}
