package rfid

import "fmt"

// MIFARE Classic 1K memory layout.
const (
	BlockSize        = 16
	BlocksPerSector  = 4
	KeySize          = 6
	Classic1KSectors = 16
	Classic1KBlocks  = Classic1KSectors * BlocksPerSector
	Classic1KSize    = Classic1KBlocks * BlockSize
)

// Key types for GENERAL AUTHENTICATE.
const (
	KeyTypeA byte = 0x60
	KeyTypeB byte = 0x61
)

// ClassicTag is the capability a MIFARE Classic collaborator must provide.
// Implementations are not safe for concurrent use; one command is in flight
// at a time.
type ClassicTag interface {
	Connect() error
	AuthenticateKeyA(sector int, key []byte) error
	ReadBlock(block int) ([]byte, error)
	Close() error
}

// BlockToSector maps a block index to its sector (1K layout).
func BlockToSector(block int) int {
	return block / BlocksPerSector
}

// SectorToBlock returns the first block index of a sector.
func SectorToBlock(sector int) int {
	return sector * BlocksPerSector
}

// IsTrailer reports whether block is a sector trailer (keys + access bits).
func IsTrailer(block int) bool {
	return block%BlocksPerSector == BlocksPerSector-1
}

// PCSCTag drives a MIFARE Classic tag through a PC/SC contactless reader
// using the storage-card pseudo-APDUs. Every Key-A is loaded into the same
// volatile slot right before authenticating.
type PCSCTag struct {
	ReaderIndex int
	KeySlot     byte

	conn *Connection
}

// NewPCSCTag returns a tag bound to the reader at readerIndex. The
// connection is opened by Connect.
func NewPCSCTag(readerIndex int) *PCSCTag {
	return &PCSCTag{ReaderIndex: readerIndex}
}

// Connect opens the reader connection.
func (t *PCSCTag) Connect() error {
	if t.conn != nil {
		return fmt.Errorf("reader %d already connected", t.ReaderIndex)
	}
	conn, err := Connect(t.ReaderIndex)
	if err != nil {
		return err
	}
	t.conn = conn
	return nil
}

// AuthenticateKeyA authenticates sector with a 6-byte Key-A.
func (t *PCSCTag) AuthenticateKeyA(sector int, key []byte) error {
	if t.conn == nil {
		return fmt.Errorf("connection not established")
	}
	if err := LoadKey(t.conn, t.KeySlot, key); err != nil {
		return fmt.Errorf("load key: %w", err)
	}
	return GeneralAuthenticate(t.conn, SectorToBlock(sector), KeyTypeA, t.KeySlot)
}

// ReadBlock reads one 16-byte block from the authenticated sector.
func (t *PCSCTag) ReadBlock(block int) ([]byte, error) {
	if t.conn == nil {
		return nil, fmt.Errorf("connection not established")
	}
	return ReadBinaryBlock(t.conn, block, BlockSize)
}

// Close releases the reader connection. It is safe to call more than once.
func (t *PCSCTag) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
