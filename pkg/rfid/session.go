package rfid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var errNoSectorKey = errors.New("no key for sector")

// Session tracks the sectors authenticated during one tag presentment.
// It is created by WithSession and must not outlive it.
type Session struct {
	tag           ClassicTag
	keys          [][]byte
	authenticated map[int]struct{}
}

// NewSession returns a session over an already connected tag. keys[i] is
// the Key-A of sector i.
func NewSession(tag ClassicTag, keys [][]byte) *Session {
	return &Session{
		tag:           tag,
		keys:          keys,
		authenticated: make(map[int]struct{}),
	}
}

// WithSession connects the tag, runs fn with a fresh session and closes the
// tag on every exit path. Close failures are logged, never returned.
func WithSession(ctx context.Context, tag ClassicTag, keys [][]byte, fn func(*Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := tag.Connect(); err != nil {
		if errors.Is(err, ErrSession) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrSession, err)
	}
	defer func() {
		if err := tag.Close(); err != nil {
			slog.Warn("tag close failed", "error", err)
		}
	}()
	return fn(NewSession(tag, keys))
}

// Authenticated reports whether sector was authenticated in this session.
func (s *Session) Authenticated(sector int) bool {
	_, ok := s.authenticated[sector]
	return ok
}

// EnsureAuthenticated authenticates the sector holding block unless it was
// already authenticated in this session. A sector with no derived key fails
// without touching the tag. There is no retry.
func (s *Session) EnsureAuthenticated(block int) error {
	if block < 0 {
		return &BlockError{Op: "auth", Sector: -1, Block: block, Kind: ErrAuthentication, Cause: errNoSectorKey}
	}
	sector := BlockToSector(block)
	if s.Authenticated(sector) {
		return nil
	}
	if sector >= len(s.keys) || len(s.keys[sector]) != KeySize {
		return &BlockError{Op: "auth", Sector: sector, Block: block, Kind: ErrAuthentication, Cause: errNoSectorKey}
	}
	if err := s.tag.AuthenticateKeyA(sector, s.keys[sector]); err != nil {
		return &BlockError{Op: "auth", Sector: sector, Block: block, Kind: ErrAuthentication, Cause: err}
	}
	s.authenticated[sector] = struct{}{}
	return nil
}

// ReadBlock authenticates on demand and reads one block. Transport faults
// come back as *BlockError wrapping ErrRead.
func (s *Session) ReadBlock(block int) ([]byte, error) {
	if err := s.EnsureAuthenticated(block); err != nil {
		return nil, err
	}
	sector := BlockToSector(block)
	data, err := s.tag.ReadBlock(block)
	if err != nil {
		return nil, &BlockError{Op: "read", Sector: sector, Block: block, Kind: ErrRead, Cause: err}
	}
	if len(data) < BlockSize {
		return nil, &BlockError{Op: "read", Sector: sector, Block: block, Kind: ErrRead,
			Cause: fmt.Errorf("short block: %d bytes", len(data))}
	}
	out := make([]byte, BlockSize)
	copy(out, data)
	return out, nil
}
