package rfid

import (
	"bytes"
	"fmt"
	"os"
)

// Default sector trailer contents after the Key-A.
var (
	transportAccessBits = []byte{0xFF, 0x07, 0x80, 0x69}
	transportKeyB       = []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
)

// Image is a raw MIFARE Classic 1K memory image (the 1024-byte ".bin" dump
// format written by common reader tools).
type Image [Classic1KSize]byte

// NewImage builds an image for uid with keys[i] as the Key-A of sector i
// and the given data blocks. Block 0 and sector trailers are generated and
// cannot be supplied in blocks.
func NewImage(uid []byte, keys [][]byte, blocks map[int][]byte) (*Image, error) {
	if len(uid) != 4 && len(uid) != 7 {
		return nil, fmt.Errorf("UID must be 4 or 7 bytes, got %d", len(uid))
	}
	if len(keys) < Classic1KSectors {
		return nil, fmt.Errorf("need %d sector keys, got %d", Classic1KSectors, len(keys))
	}

	img := &Image{}
	manufacturer := img[0:BlockSize]
	copy(manufacturer, uid)
	if len(uid) == 4 {
		manufacturer[4] = uid[0] ^ uid[1] ^ uid[2] ^ uid[3]
		manufacturer[5] = 0x08 // SAK
		manufacturer[6] = 0x04 // ATQA
		manufacturer[7] = 0x00
	}

	for sector := 0; sector < Classic1KSectors; sector++ {
		if len(keys[sector]) != KeySize {
			return nil, fmt.Errorf("sector %d key must be %d bytes, got %d", sector, KeySize, len(keys[sector]))
		}
		trailer := img.block(SectorToBlock(sector) + BlocksPerSector - 1)
		copy(trailer[0:6], keys[sector])
		copy(trailer[6:10], transportAccessBits)
		copy(trailer[10:16], transportKeyB)
	}

	for block, data := range blocks {
		if err := img.SetBlock(block, data); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// LoadImage reads an image file. The file must be exactly 1024 bytes.
func LoadImage(path string) (*Image, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(content) != Classic1KSize {
		return nil, fmt.Errorf("image must be %d bytes, got %d", Classic1KSize, len(content))
	}
	img := &Image{}
	copy(img[:], content)
	return img, nil
}

// Save writes the image to path.
func (img *Image) Save(path string) error {
	return os.WriteFile(path, img[:], 0o644)
}

func (img *Image) block(i int) []byte {
	return img[i*BlockSize : (i+1)*BlockSize]
}

// Block returns a copy of block i.
func (img *Image) Block(i int) ([]byte, error) {
	if i < 0 || i >= Classic1KBlocks {
		return nil, fmt.Errorf("block %d out of range (0..%d)", i, Classic1KBlocks-1)
	}
	return bytes.Clone(img.block(i)), nil
}

// SetBlock overwrites data block i. Block 0 and sector trailers are
// rejected. Short data is zero padded.
func (img *Image) SetBlock(i int, data []byte) error {
	if i <= 0 || i >= Classic1KBlocks {
		return fmt.Errorf("block %d is not a writable data block", i)
	}
	if IsTrailer(i) {
		return fmt.Errorf("block %d is a sector trailer", i)
	}
	if len(data) > BlockSize {
		return fmt.Errorf("block %d data too long: %d bytes", i, len(data))
	}
	dst := img.block(i)
	clear(dst)
	copy(dst, data)
	return nil
}

// UID returns the UID stored in block 0: 4 bytes when byte 4 is a valid
// BCC, 7 bytes otherwise.
func (img *Image) UID() []byte {
	b := img.block(0)
	if b[0]^b[1]^b[2]^b[3] == b[4] {
		return bytes.Clone(b[0:4])
	}
	return bytes.Clone(b[0:7])
}

// KeyA returns the Key-A stored in the trailer of sector.
func (img *Image) KeyA(sector int) []byte {
	trailer := img.block(SectorToBlock(sector) + BlocksPerSector - 1)
	return bytes.Clone(trailer[0:KeySize])
}

// ImageTag serves an Image through the ClassicTag contract. Like the real
// chip, only the most recently authenticated sector is readable, and the
// Key-A bytes of a trailer read back as zeros.
type ImageTag struct {
	img       *Image
	connected bool
	current   int
}

// NewImageTag wraps img.
func NewImageTag(img *Image) *ImageTag {
	return &ImageTag{img: img, current: -1}
}

// Connect opens the emulated session.
func (t *ImageTag) Connect() error {
	if t.connected {
		return fmt.Errorf("image tag already connected")
	}
	t.connected = true
	t.current = -1
	return nil
}

// AuthenticateKeyA compares key with the Key-A in the sector trailer.
func (t *ImageTag) AuthenticateKeyA(sector int, key []byte) error {
	if !t.connected {
		return fmt.Errorf("connection not established")
	}
	if sector < 0 || sector >= Classic1KSectors {
		return &SWError{Cmd: 0x86, SW: SWWrongP1P2}
	}
	if !bytes.Equal(t.img.KeyA(sector), key) {
		t.current = -1
		return &SWError{Cmd: 0x86, SW: SWAuthFailed}
	}
	t.current = sector
	return nil
}

// ReadBlock returns block data if its sector is the authenticated one.
func (t *ImageTag) ReadBlock(block int) ([]byte, error) {
	if !t.connected {
		return nil, fmt.Errorf("connection not established")
	}
	if block < 0 || block >= Classic1KBlocks {
		return nil, &SWError{Cmd: 0xB0, SW: SWWrongP1P2}
	}
	if BlockToSector(block) != t.current {
		return nil, &SWError{Cmd: 0xB0, SW: SWSecurityNotSatisfied}
	}
	data := bytes.Clone(t.img.block(block))
	if IsTrailer(block) {
		clear(data[0:KeySize])
	}
	return data, nil
}

// Close ends the emulated session.
func (t *ImageTag) Close() error {
	t.connected = false
	t.current = -1
	return nil
}
