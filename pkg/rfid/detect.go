package rfid

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// TagType classifies a presented tag.
type TagType int

const (
	Unsupported TagType = iota
	MifareClassic1K
	Ntag213
	Ntag215
	Ntag216
)

func (t TagType) String() string {
	switch t {
	case MifareClassic1K:
		return "MIFARE Classic 1K"
	case Ntag213:
		return "NTAG213"
	case Ntag215:
		return "NTAG215"
	case Ntag216:
		return "NTAG216"
	default:
		return "unsupported"
	}
}

// TagInfo is what can be learned about a tag before any authentication.
type TagInfo struct {
	UID  []byte
	ATR  []byte
	Type TagType
}

// UIDHex returns the UID as uppercase hex without separators.
func (i *TagInfo) UIDHex() string {
	return strings.ToUpper(hex.EncodeToString(i.UID))
}

// PC/SC Part 3 registered application provider ID, carried in the ATR
// historical bytes of contactless storage cards.
var pcscRID = []byte{0xA0, 0x00, 0x00, 0x03, 0x06}

// PC/SC Part 3 card names.
const (
	cardNameClassic1K  = 0x0001
	cardNameUltralight = 0x0003
)

// NTAG21x capability container size bytes (CC byte 2).
const (
	ccSizeNtag213 = 0x12
	ccSizeNtag215 = 0x3E
	ccSizeNtag216 = 0x6D
)

// DetectTagType classifies a tag from its ATR. Ultralight-family tags are
// refined into NTAG213/215/216 by reading the capability container (page 3).
//
// ATR layout for PC/SC storage cards:
//
//	3B 8F 80 01 80 4F 0C A0 00 00 03 06 <SS> <C0 C1> 00 00 00 00 <TCK>
//	                     |-- RID ---|   std  name
func DetectTagType(card Card, atr []byte) TagType {
	if len(atr) < 15 || !bytes.Equal(atr[7:12], pcscRID) {
		return Unsupported
	}
	name := uint16(atr[13])<<8 | uint16(atr[14])
	switch name {
	case cardNameClassic1K:
		return MifareClassic1K
	case cardNameUltralight:
		return detectNtag(card)
	default:
		return Unsupported
	}
}

func detectNtag(card Card) TagType {
	cc, err := ReadBinaryBlock(card, 3, 0x04)
	if err != nil || len(cc) < 4 {
		slog.Debug("capability container read failed", "error", err)
		return Unsupported
	}
	switch cc[2] {
	case ccSizeNtag213:
		return Ntag213
	case ccSizeNtag215:
		return Ntag215
	case ccSizeNtag216:
		return Ntag216
	default:
		return Unsupported
	}
}

// Probe connects to the reader, reads the ATR and UID, classifies the tag
// and disconnects again.
func Probe(readerIndex int) (*TagInfo, error) {
	conn, err := Connect(readerIndex)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	atr, err := conn.ATR()
	if err != nil {
		return nil, fmt.Errorf("%w: read ATR: %w", ErrSession, err)
	}
	uid, err := GetUID(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSession, err)
	}
	info := &TagInfo{UID: uid, ATR: atr, Type: DetectTagType(conn, atr)}
	slog.Debug("tag probed", "uid", info.UIDHex(), "atr", strings.ToUpper(hex.EncodeToString(atr)), "type", info.Type)
	return info, nil
}

// ProbeImage describes an image the way Probe describes a live tag.
func ProbeImage(img *Image) *TagInfo {
	return &TagInfo{UID: img.UID(), Type: MifareClassic1K}
}
