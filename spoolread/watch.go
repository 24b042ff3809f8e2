package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ebfe/scard"

	"github.com/barnettlynn/spooltools/pkg/rfid"
)

// watchReader calls onPresent once per card presentment on the reader at
// readerIndex until ctx is cancelled.
func watchReader(ctx context.Context, readerIndex int, onPresent func()) error {
	sctx, err := scard.EstablishContext()
	if err != nil {
		return fmt.Errorf("%w: establish context: %w", rfid.ErrSession, err)
	}
	defer sctx.Release()

	reader, err := rfid.ReaderName(sctx, readerIndex)
	if err != nil {
		return err
	}
	fmt.Printf("Using reader [%d]: %s\n", readerIndex, reader)

	states := []scard.ReaderState{{
		Reader:       reader,
		CurrentState: scard.StateUnaware,
	}}
	cardPresent := false

	fmt.Println("Waiting for card scans...")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sctx.GetStatusChange(states, time.Second); err != nil {
			if errors.Is(err, scard.ErrTimeout) {
				continue
			}
			slog.Warn("GetStatusChange failed", "error", err)
			time.Sleep(time.Second)
			continue
		}

		rs := states[0]
		if (rs.EventState&scard.StatePresent) != 0 && !cardPresent {
			cardPresent = true
			onPresent()
			fmt.Println("Waiting for next scan...")
		} else if (rs.EventState&scard.StateEmpty) != 0 && cardPresent {
			cardPresent = false
		}

		states[0].CurrentState = rs.EventState
	}
}
