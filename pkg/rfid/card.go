package rfid

import (
	"encoding/binary"
	"fmt"
)

// Card is anything that exchanges raw APDUs: a PC/SC connection or a test double.
type Card interface {
	Transmit(apdu []byte) ([]byte, error)
}

// Transmit exchanges one APDU and splits off the trailing status word.
func Transmit(card Card, apdu []byte) (data []byte, sw uint16, err error) {
	resp, err := card.Transmit(apdu)
	if err != nil {
		return nil, 0, err
	}
	n := len(resp)
	if n < 2 {
		return nil, 0, fmt.Errorf("short response: %d bytes", n)
	}
	return resp[:n-2], binary.BigEndian.Uint16(resp[n-2:]), nil
}

// GetUID retrieves the card UID via the PC/SC GET DATA command (FF CA 00 00).
// Tries with Le=0x00 (wildcard), then Le=0x07 and Le=0x04 for readers that
// insist on an exact length.
func GetUID(card Card) ([]byte, error) {
	for _, le := range []byte{0x00, 0x07, 0x04} {
		apdu := []byte{0xFF, 0xCA, 0x00, 0x00, le}
		data, sw, err := Transmit(card, apdu)
		if err == nil && SwOK(sw) && len(data) > 0 {
			return data, nil
		}
	}
	return nil, fmt.Errorf("UID not available via GET DATA")
}

// LoadKey stores a 6-byte MIFARE key in the reader's volatile key slot
// (LOAD KEY, FF 82).
func LoadKey(card Card, slot byte, key []byte) error {
	if len(key) != KeySize {
		return fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	apdu := make([]byte, 0, 5+KeySize)
	apdu = append(apdu, 0xFF, 0x82, 0x00, slot, KeySize)
	apdu = append(apdu, key...)
	_, sw, err := Transmit(card, apdu)
	if err != nil {
		return err
	}
	if !SwOK(sw) {
		return &SWError{Cmd: 0x82, SW: sw}
	}
	return nil
}

// GeneralAuthenticate authenticates the sector holding block with the key
// previously loaded into slot (GENERAL AUTHENTICATE, FF 86).
//
// keyType is KeyTypeA (0x60) or KeyTypeB (0x61).
func GeneralAuthenticate(card Card, block int, keyType, slot byte) error {
	// Data: version(1) + block MSB(1) + block LSB(1) + key type(1) + key slot(1)
	apdu := []byte{0xFF, 0x86, 0x00, 0x00, 0x05, 0x01, 0x00, byte(block), keyType, slot}
	_, sw, err := Transmit(card, apdu)
	if err != nil {
		return err
	}
	if !SwOK(sw) {
		return &SWError{Cmd: 0x86, SW: sw}
	}
	return nil
}

// ReadBinaryBlock reads one block using the storage-card READ BINARY
// command (FF B0). le is the expected length: 16 for MIFARE Classic
// blocks, 4 for NTAG pages.
func ReadBinaryBlock(card Card, block int, le byte) ([]byte, error) {
	apdu := []byte{0xFF, 0xB0, 0x00, byte(block), le}
	data, sw, err := Transmit(card, apdu)
	if err != nil {
		return nil, err
	}
	if !SwOK(sw) {
		return nil, &SWError{Cmd: 0xB0, SW: sw}
	}
	return data, nil
}
