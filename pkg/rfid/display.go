package rfid

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PrintDump prints a dump as one line per block, grouped by sector.
//
// Example:
//
//	UID: 04A3B2C1
//	Sector  0
//	  Block  0: 04 A3 B2 C1 D4 08 04 00 62 63 64 65 66 67 68 69
//	  Block  1: (read failed)
func PrintDump(w io.Writer, r *DumpResult) {
	fmt.Fprintf(w, "UID: %s\n", strings.ToUpper(hex.EncodeToString(r.UID)))
	lastSector := -1
	for _, b := range r.Blocks {
		if b.Sector != lastSector {
			fmt.Fprintf(w, "Sector %2d\n", b.Sector)
			lastSector = b.Sector
		}
		if b.Err != nil {
			fmt.Fprintf(w, "  Block %2d: (%s)\n", b.Block, failureLabel(b.Err))
			continue
		}
		fmt.Fprintf(w, "  Block %2d: %s\n", b.Block, hexSpaced(b.Data))
	}
	fmt.Fprintf(w, "%d blocks, %d failed\n", len(r.Blocks), r.Failed())
}

func failureLabel(err error) string {
	switch {
	case errors.Is(err, ErrAuthentication):
		return "auth failed"
	case errors.Is(err, ErrRead):
		return "read failed"
	default:
		return "error"
	}
}
