package rfid

import (
	"errors"
	"fmt"

	"github.com/ebfe/scard"
)

// Connection is an open PC/SC context plus the card on one reader.
type Connection struct {
	ctx       *scard.Context
	Card      *scard.Card
	Reader    string
	ReaderIdx int
}

// Connect opens the card on the reader at readerIndex (0-based). Failures
// wrap ErrSession.
func Connect(readerIndex int) (*Connection, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("%w: establish context: %w", ErrSession, err)
	}

	reader, err := ReaderName(ctx, readerIndex)
	if err != nil {
		_ = ctx.Release()
		return nil, fmt.Errorf("%w: %w", ErrSession, err)
	}
	card, err := ctx.Connect(reader, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		_ = ctx.Release()
		return nil, fmt.Errorf("%w: connect %q: %w", ErrSession, reader, err)
	}
	return &Connection{ctx: ctx, Card: card, Reader: reader, ReaderIdx: readerIndex}, nil
}

// ReaderName resolves a reader index to its PC/SC name.
func ReaderName(ctx *scard.Context, readerIndex int) (string, error) {
	readers, err := ctx.ListReaders()
	if err != nil {
		return "", fmt.Errorf("list readers: %w", err)
	}
	if len(readers) == 0 {
		return "", errors.New("no readers found")
	}
	if readerIndex < 0 || readerIndex >= len(readers) {
		return "", fmt.Errorf("reader index %d out of range (0..%d)", readerIndex, len(readers)-1)
	}
	return readers[readerIndex], nil
}

// ATR returns the answer-to-reset of the connected card.
func (c *Connection) ATR() ([]byte, error) {
	if c == nil || c.Card == nil {
		return nil, errors.New("connection not established")
	}
	status, err := c.Card.Status()
	if err != nil {
		return nil, err
	}
	return status.Atr, nil
}

// Close disconnects the card, leaving it powered, and releases the context.
func (c *Connection) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Card != nil {
		errs = append(errs, c.Card.Disconnect(scard.LeaveCard))
		c.Card = nil
	}
	if c.ctx != nil {
		errs = append(errs, c.ctx.Release())
		c.ctx = nil
	}
	return errors.Join(errs...)
}

// Transmit implements Card.
func (c *Connection) Transmit(apdu []byte) ([]byte, error) {
	if c == nil || c.Card == nil {
		return nil, errors.New("connection not established")
	}
	return c.Card.Transmit(apdu)
}
