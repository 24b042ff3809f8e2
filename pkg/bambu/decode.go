package bambu

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/barnettlynn/spooltools/pkg/rfid"
	"github.com/barnettlynn/spooltools/pkg/spool"
)

// Manufacturer is the fixed manufacturer name for this tag family.
const Manufacturer = "Bambu Lab"

// Data blocks holding the spool fields.
const (
	BlockMaterial       = 2  // material text
	BlockColorName      = 4  // detailed material / color name text
	BlockPhysical       = 5  // color1[0:3], weight LE u16 [4:6], diameter LE f32 [8:12]
	BlockProductionDate = 13 // "YY_MM_DD..." text
	BlockSecondColor    = 16 // color2[4:7]
)

// RequiredBlocks lists the blocks a read needs, in read order.
var RequiredBlocks = []int{BlockMaterial, BlockColorName, BlockPhysical, BlockProductionDate, BlockSecondColor}

// ErrMissingBlock means a required block was absent or shorter than 16 bytes.
var ErrMissingBlock = errors.New("required block missing")

// noSecondColor is the second color value that means "single color".
// A genuinely black second color cannot be told apart from it.
const noSecondColor = "#000000"

// DatePolicy controls how production-date month and day tokens are normalised.
type DatePolicy int

const (
	// DateLastTwo left-pads each token to two characters and keeps the last
	// two, so "3" becomes "03" and "123" becomes "23".
	DateLastTwo DatePolicy = iota
	// DateStrict rejects month or day tokens longer than two characters,
	// yielding "Unknown".
	DateStrict
)

func (p DatePolicy) String() string {
	switch p {
	case DateStrict:
		return "strict"
	default:
		return "last-two"
	}
}

// ParseDatePolicy parses "last-two" (or "") and "strict".
func ParseDatePolicy(s string) (DatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-two":
		return DateLastTwo, nil
	case "strict":
		return DateStrict, nil
	default:
		return DateLastTwo, fmt.Errorf("unknown date policy %q (want last-two or strict)", s)
	}
}

// Decode builds a spool record from the required blocks. It fails only if a
// block is missing; implausible field content falls back per field.
func Decode(uid []byte, blocks map[int][]byte, policy DatePolicy) (*spool.Record, error) {
	for _, i := range RequiredBlocks {
		if len(blocks[i]) < rfid.BlockSize {
			return nil, fmt.Errorf("%w: block %d", ErrMissingBlock, i)
		}
	}

	material := trimText(blocks[BlockMaterial])
	if isBlank(material) {
		material = spool.Unknown
	}
	colorName := trimText(blocks[BlockColorName])
	if isBlank(colorName) {
		colorName = material
	}

	physical := blocks[BlockPhysical]
	color1 := colorHex(physical[0:3])
	color2 := colorHex(blocks[BlockSecondColor][4:7])
	colors := color1
	if color2 != noSecondColor {
		colors = color1 + "-" + color2
	}

	return &spool.Record{
		Manufacturer:   Manufacturer,
		Material:       material,
		ColorName:      colorName,
		ColorHex:       colors,
		WeightGrams:    binary.LittleEndian.Uint16(physical[4:6]),
		DiameterMm:     float64(math.Float32frombits(binary.LittleEndian.Uint32(physical[8:12]))),
		ProductionDate: parseProductionDate(blocks[BlockProductionDate], policy),
		UID:            strings.ToUpper(hex.EncodeToString(uid)),
	}, nil
}

// trimText decodes block text and strips every byte <= 0x20 (NUL padding,
// control characters and spaces) from both ends.
func trimText(b []byte) string {
	start, end := 0, len(b)
	for start < end && b[start] <= ' ' {
		start++
	}
	for end > start && b[end-1] <= ' ' {
		end--
	}
	return strings.ToValidUTF8(string(b[start:end]), "\uFFFD")
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func colorHex(rgb []byte) string {
	return "#" + strings.ToUpper(hex.EncodeToString(rgb))
}

func parseProductionDate(b []byte, policy DatePolicy) string {
	raw := trimText(b)
	if isBlank(raw) {
		return spool.Unknown
	}
	var parts []string
	for _, p := range strings.Split(raw, "_") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 3 {
		return spool.Unknown
	}
	if policy == DateStrict && (len([]rune(parts[1])) > 2 || len([]rune(parts[2])) > 2) {
		return spool.Unknown
	}
	return "20" + parts[0] + "/" + lastTwo(parts[1]) + "/" + lastTwo(parts[2])
}

// lastTwo left-pads tok with '0' to two characters, then keeps the last two.
func lastTwo(tok string) string {
	r := []rune(tok)
	for len(r) < 2 {
		r = append([]rune{'0'}, r...)
	}
	return string(r[len(r)-2:])
}
