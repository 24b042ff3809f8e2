package bambu

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/barnettlynn/spooltools/pkg/rfid"
)

// Fields are the raw values Encode writes into the data blocks.
type Fields struct {
	Material       string
	ColorName      string
	Color          [3]byte
	SecondColor    [3]byte // zero means single color
	WeightGrams    uint16
	DiameterMm     float32
	ProductionDate string // tag form, e.g. "24_01_15"
}

// Encode lays Fields out in the block format Decode reads. Text longer than
// one block is rejected.
func Encode(f Fields) (map[int][]byte, error) {
	blocks := make(map[int][]byte, len(RequiredBlocks))
	for _, i := range RequiredBlocks {
		blocks[i] = make([]byte, rfid.BlockSize)
	}

	texts := []struct {
		block int
		name  string
		value string
	}{
		{BlockMaterial, "material", f.Material},
		{BlockColorName, "color name", f.ColorName},
		{BlockProductionDate, "production date", f.ProductionDate},
	}
	for _, t := range texts {
		if len(t.value) > rfid.BlockSize {
			return nil, fmt.Errorf("%s too long: %d bytes (max %d)", t.name, len(t.value), rfid.BlockSize)
		}
		copy(blocks[t.block], t.value)
	}

	physical := blocks[BlockPhysical]
	copy(physical[0:3], f.Color[:])
	binary.LittleEndian.PutUint16(physical[4:6], f.WeightGrams)
	binary.LittleEndian.PutUint32(physical[8:12], math.Float32bits(f.DiameterMm))

	copy(blocks[BlockSecondColor][4:7], f.SecondColor[:])
	return blocks, nil
}

// ParseColor parses "#RRGGBB" (the '#' is optional).
func ParseColor(s string) ([3]byte, error) {
	var rgb [3]byte
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return rgb, fmt.Errorf("color %q must be #RRGGBB", s)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return rgb, fmt.Errorf("color %q: %v", s, err)
	}
	copy(rgb[:], b)
	return rgb, nil
}
