package bambu

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/barnettlynn/spooltools/pkg/rfid"
	"github.com/barnettlynn/spooltools/pkg/spool"
)

var (
	_ spool.Reader = (*Reader)(nil)
	_ spool.Dumper = (*Reader)(nil)
)

// Reader reads spool records from MIFARE Classic 1K tags of this family.
// A Reader holds only immutable configuration and can be reused for every
// presentment; each call derives keys and authenticates from scratch.
type Reader struct {
	Secret      Secret
	SectorCount int
	DatePolicy  DatePolicy
}

// NewReader returns a Reader for 1K tags with the default date policy.
func NewReader(secret Secret) *Reader {
	return &Reader{
		Secret:      secret,
		SectorCount: rfid.Classic1KSectors,
		DatePolicy:  DateLastTwo,
	}
}

func (r *Reader) sectorCount() int {
	if r.SectorCount <= 0 {
		return rfid.Classic1KSectors
	}
	return r.SectorCount
}

// Read derives the sector keys for uid, reads the required blocks in order
// and decodes them. The first failed authentication or read ends the
// attempt; there is no retry. The tag is closed on every path.
//
// Errors wrap rfid.ErrAuthentication, rfid.ErrRead or rfid.ErrSession.
func (r *Reader) Read(ctx context.Context, uid []byte, tag rfid.ClassicTag) (*spool.Record, error) {
	uidHex := strings.ToUpper(hex.EncodeToString(uid))
	keys, err := DeriveKeys(r.Secret, uid, r.sectorCount())
	if err != nil {
		return nil, err
	}

	var rec *spool.Record
	err = rfid.WithSession(ctx, tag, keys, func(sess *rfid.Session) error {
		blocks := make(map[int][]byte, len(RequiredBlocks))
		for _, block := range RequiredBlocks {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := sess.ReadBlock(block)
			if err != nil {
				return err
			}
			blocks[block] = data
		}
		decoded, err := Decode(uid, blocks, r.DatePolicy)
		if err != nil {
			return err
		}
		rec = decoded
		return nil
	})
	if err != nil {
		slog.Warn("spool read failed", "uid", uidHex, "error", err)
		return nil, fmt.Errorf("read spool %s: %w", uidHex, err)
	}

	slog.Info("spool decoded", "uid", uidHex, "material", rec.Material, "color", rec.ColorHex)
	return rec, nil
}

// Dump derives the sector keys for uid and reads every block, recording
// per-block failures instead of aborting.
func (r *Reader) Dump(ctx context.Context, uid []byte, tag rfid.ClassicTag) (*rfid.DumpResult, error) {
	keys, err := DeriveKeys(r.Secret, uid, r.sectorCount())
	if err != nil {
		return nil, err
	}
	result, err := rfid.Dump(ctx, tag, uid, keys, r.sectorCount())
	if result != nil {
		slog.Info("dump finished", "uid", strings.ToUpper(hex.EncodeToString(uid)),
			"blocks", len(result.Blocks), "failed", result.Failed())
	}
	return result, err
}
