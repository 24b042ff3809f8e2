package bambu

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/barnettlynn/spooltools/pkg/rfid"
)

// LevelTrace is below slog.LevelDebug. Derived key material is only logged
// at this level, which CLIs leave disabled unless asked.
const LevelTrace = slog.LevelDebug - 4

// SecretSize is the length of the master secret used as HKDF input keying material.
const SecretSize = 16

// MaxSectors is the largest sector count HKDF-SHA256 can serve (255*32 bytes / 6).
const MaxSectors = 255 * sha256.Size / rfid.KeySize

// keyAInfo is the HKDF context for Key-A derivation.
var keyAInfo = []byte("RFID-A\x00")

// Secret is the master secret shared by every tag of the family. It is
// loaded once at startup and passed to DeriveKeys.
type Secret [SecretSize]byte

// ParseSecret decodes a secret from 32 hexadecimal characters.
func ParseSecret(s string) (Secret, error) {
	var secret Secret
	s = strings.TrimSpace(s)
	if len(s) != 2*SecretSize {
		return secret, fmt.Errorf("secret must be %d hex chars, got %d", 2*SecretSize, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return secret, fmt.Errorf("invalid hex secret: %v", err)
	}
	copy(secret[:], b)
	return secret, nil
}

// LoadSecretHexFile loads the master secret from a .hex file.
// The file should contain a single line with 32 hexadecimal characters.
func LoadSecretHexFile(path string) (Secret, error) {
	f, err := os.Open(path)
	if err != nil {
		return Secret{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return ParseSecret(line)
	}
	if err := scanner.Err(); err != nil {
		return Secret{}, err
	}
	return Secret{}, errors.New("secret file is empty")
}

// DeriveKeys derives the Key-A of every sector from the tag UID.
//
// HKDF-SHA256 with salt = UID, IKM = secret and info = "RFID-A\0" produces
// sectorCount*6 bytes; chunk i is the Key-A of sector i. The result is
// deterministic. A sectorCount <= 0 yields no keys.
func DeriveKeys(secret Secret, uid []byte, sectorCount int) ([][]byte, error) {
	if sectorCount <= 0 {
		return [][]byte{}, nil
	}
	if sectorCount > MaxSectors {
		return nil, fmt.Errorf("sector count %d exceeds %d", sectorCount, MaxSectors)
	}

	r := hkdf.New(sha256.New, secret[:], uid, keyAInfo)
	derived := make([]byte, sectorCount*rfid.KeySize)
	if _, err := io.ReadFull(r, derived); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}

	keys := make([][]byte, sectorCount)
	for i := range keys {
		keys[i] = derived[i*rfid.KeySize : (i+1)*rfid.KeySize : (i+1)*rfid.KeySize]
	}

	if slog.Default().Enabled(context.Background(), LevelTrace) {
		for i, key := range keys {
			slog.Log(context.Background(), LevelTrace, "derived key A", "sector", i, "key", strings.ToUpper(hex.EncodeToString(key)))
		}
	}
	return keys, nil
}
