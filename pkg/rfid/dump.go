package rfid

import (
	"context"
	"encoding/hex"
	"log/slog"
	"strings"
)

// BlockDump holds the outcome of reading one block during a dump.
type BlockDump struct {
	Sector int
	Block  int
	Data   []byte // nil when Err is set
	Err    error
}

// DumpResult holds every block visited by Dump, in tag order.
type DumpResult struct {
	UID    []byte
	Blocks []BlockDump
}

// Failed returns the number of blocks that could not be read.
func (r *DumpResult) Failed() int {
	n := 0
	for _, b := range r.Blocks {
		if b.Err != nil {
			n++
		}
	}
	return n
}

// Dump reads every block of the first sectorCount sectors, authenticating
// each sector lazily. A failed block is logged and recorded, and the dump
// continues with the next one.
//
// The returned error is non-nil only if the tag could not be connected or
// ctx was cancelled; in the latter case the partial result is returned too.
func Dump(ctx context.Context, tag ClassicTag, uid []byte, keys [][]byte, sectorCount int) (*DumpResult, error) {
	result := &DumpResult{UID: uid}
	err := WithSession(ctx, tag, keys, func(sess *Session) error {
		for sector := 0; sector < sectorCount; sector++ {
			start := SectorToBlock(sector)
			for offset := 0; offset < BlocksPerSector; offset++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				block := start + offset
				data, err := sess.ReadBlock(block)
				if err != nil {
					slog.Warn("block auth/read failed", "sector", sector, "block", block, "error", err)
					result.Blocks = append(result.Blocks, BlockDump{Sector: sector, Block: block, Err: err})
					continue
				}
				slog.Debug("block", "sector", sector, "block", block, "data", hexSpaced(data))
				result.Blocks = append(result.Blocks, BlockDump{Sector: sector, Block: block, Data: data})
			}
		}
		return nil
	})
	if err != nil && len(result.Blocks) == 0 {
		return nil, err
	}
	return result, err
}

func hexSpaced(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strings.ToUpper(hex.EncodeToString([]byte{v}))
	}
	return strings.Join(parts, " ")
}
