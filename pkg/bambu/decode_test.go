package bambu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barnettlynn/spooltools/pkg/spool"
)

func block(data ...byte) []byte {
	b := make([]byte, 16)
	copy(b, data)
	return b
}

func textBlock(s string) []byte {
	return block([]byte(s)...)
}

// baseBlocks returns a valid block set: PLA / PLA Basic, #FF0000 + #0000FF,
// 1000 g, 1.75 mm, 24_01_15.
func baseBlocks() map[int][]byte {
	physical := block(0xFF, 0x00, 0x00)
	binary.LittleEndian.PutUint16(physical[4:6], 1000)
	binary.LittleEndian.PutUint32(physical[8:12], math.Float32bits(1.75))
	return map[int][]byte{
		2:  textBlock("PLA"),
		4:  textBlock("PLA Basic"),
		5:  physical,
		13: textBlock("24_01_15"),
		16: block(0, 0, 0, 0, 0x00, 0x00, 0xFF),
	}
}

func decodeBase(t *testing.T, mutate func(map[int][]byte)) *spool.Record {
	t.Helper()
	blocks := baseBlocks()
	if mutate != nil {
		mutate(blocks)
	}
	rec, err := Decode(testUID, blocks, DateLastTwo)
	require.NoError(t, err)
	return rec
}

func TestDecodeFullRecord(t *testing.T) {
	rec := decodeBase(t, nil)
	assert.Equal(t, &spool.Record{
		Manufacturer:   "Bambu Lab",
		Material:       "PLA",
		ColorName:      "PLA Basic",
		ColorHex:       "#FF0000-#0000FF",
		WeightGrams:    1000,
		DiameterMm:     1.75,
		ProductionDate: "2024/01/15",
		UID:            "04A3B2C1001122",
	}, rec)
}

func TestDecodeRequiresEveryBlock(t *testing.T) {
	for _, missing := range RequiredBlocks {
		blocks := baseBlocks()
		delete(blocks, missing)
		rec, err := Decode(testUID, blocks, DateLastTwo)
		assert.ErrorIs(t, err, ErrMissingBlock, "block %d", missing)
		assert.Nil(t, rec)

		blocks = baseBlocks()
		blocks[missing] = blocks[missing][:15]
		_, err = Decode(testUID, blocks, DateLastTwo)
		assert.ErrorIs(t, err, ErrMissingBlock, "short block %d", missing)
	}
}

func TestDecodeSecondColor(t *testing.T) {
	single := decodeBase(t, func(b map[int][]byte) { b[16] = block() })
	assert.Equal(t, "#FF0000", single.ColorHex)

	// Bytes outside [4:7] do not count as a second color.
	padded := decodeBase(t, func(b map[int][]byte) { b[16] = block(0xAA, 0xBB, 0xCC, 0xDD, 0, 0, 0, 0xEE) })
	assert.Equal(t, "#FF0000", padded.ColorHex)

	dual := decodeBase(t, func(b map[int][]byte) {
		b[5][0], b[5][1], b[5][2] = 0x12, 0xab, 0x0c
		b[16] = block(0, 0, 0, 0, 0x00, 0x00, 0x01)
	})
	assert.Equal(t, "#12AB0C-#000001", dual.ColorHex)
}

func TestDecodeTextFallbacks(t *testing.T) {
	tests := []struct {
		name          string
		material      []byte
		colorName     []byte
		wantMaterial  string
		wantColorName string
	}{
		{"both present", textBlock("PETG"), textBlock("PETG HF"), "PETG", "PETG HF"},
		{"trimmed", textBlock("  PLA\t"), block(0x01, 0x02, 'M', 'a', 't', 't', 'e', 0x20), "PLA", "Matte"},
		{"blank name uses material", textBlock("ABS"), block(), "ABS", "ABS"},
		{"whitespace name uses material", textBlock("ABS"), textBlock("   "), "ABS", "ABS"},
		{"both blank", block(), block(), "Unknown", "Unknown"},
		{"blank material keeps name", block(), textBlock("Support W"), "Unknown", "Support W"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeBase(t, func(b map[int][]byte) {
				b[2] = tt.material
				b[4] = tt.colorName
			})
			assert.Equal(t, tt.wantMaterial, rec.Material)
			assert.Equal(t, tt.wantColorName, rec.ColorName)
		})
	}
}

func TestDecodeWeight(t *testing.T) {
	for _, w := range []uint16{0, 1, 250, 1000, 0x8000, 65535} {
		rec := decodeBase(t, func(b map[int][]byte) {
			binary.LittleEndian.PutUint16(b[5][4:6], w)
		})
		assert.Equal(t, w, rec.WeightGrams)
	}

	rec := decodeBase(t, func(b map[int][]byte) { b[5][4], b[5][5] = 0xE8, 0x03 })
	assert.Equal(t, uint16(1000), rec.WeightGrams)
}

func TestDecodeDiameter(t *testing.T) {
	for _, d := range []float32{1.75, 2.85, 0} {
		rec := decodeBase(t, func(b map[int][]byte) {
			binary.LittleEndian.PutUint32(b[5][8:12], math.Float32bits(d))
		})
		assert.Equal(t, float64(d), rec.DiameterMm)
	}

	rec := decodeBase(t, func(b map[int][]byte) { copy(b[5][8:12], []byte{0x00, 0x00, 0xE0, 0x3F}) })
	assert.Equal(t, 1.75, rec.DiameterMm)
}

func TestDecodeProductionDate(t *testing.T) {
	tests := []struct {
		raw    string
		policy DatePolicy
		want   string
	}{
		{"24_01_15", DateLastTwo, "2024/01/15"},
		{"24_3_7", DateLastTwo, "2024/03/07"},
		{"24_123_07", DateLastTwo, "2024/23/07"},
		{"24__3___7_", DateLastTwo, "2024/03/07"},
		{"2024_10_15_09_24", DateLastTwo, "202024/10/15"},
		{"24_01", DateLastTwo, "Unknown"},
		{"24__01", DateLastTwo, "Unknown"},
		{"", DateLastTwo, "Unknown"},
		{"   ", DateLastTwo, "Unknown"},
		{"24_3_7", DateStrict, "2024/03/07"},
		{"24_123_07", DateStrict, "Unknown"},
		{"24_12_007", DateStrict, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String()+"/"+tt.raw, func(t *testing.T) {
			blocks := baseBlocks()
			blocks[13] = textBlock(tt.raw)
			rec, err := Decode(testUID, blocks, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.ProductionDate)
		})
	}
}

func TestDecodeUIDHex(t *testing.T) {
	rec, err := Decode([]byte{0x0a, 0xbc, 0x01, 0xff}, baseBlocks(), DateLastTwo)
	require.NoError(t, err)
	assert.Equal(t, "0ABC01FF", rec.UID)
}

func TestParseDatePolicy(t *testing.T) {
	p, err := ParseDatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DateLastTwo, p)

	p, err = ParseDatePolicy("Strict")
	require.NoError(t, err)
	assert.Equal(t, DateStrict, p)

	_, err = ParseDatePolicy("fix-it")
	assert.Error(t, err)
}
