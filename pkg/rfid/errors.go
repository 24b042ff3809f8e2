package rfid

import (
	"errors"
	"fmt"
)

// Status word constants for PC/SC storage-card responses.
const (
	SWSuccess              = 0x9000 // Success
	SWWarning              = 0x6282 // End of data reached before Le bytes (short read)
	SWAuthFailed           = 0x6300 // Operation failed (authentication rejected by the tag)
	SWWrongLength          = 0x6700 // Wrong length
	SWSecurityNotSatisfied = 0x6982 // Security status not satisfied (sector not authenticated)
	SWKeyNotLoaded         = 0x6986 // Command not allowed (no key in slot)
	SWFunctionNotSupported = 0x6A81 // Function not supported
	SWWrongP1P2            = 0x6A86 // Incorrect P1/P2 parameters
	SWWrongLe              = 0x6C00 // Wrong Le (mask: 0x6C00, correct Le in SW2)
)

// Error kinds surfaced by tag operations. Callers classify failures with
// errors.Is; the concrete error usually carries more detail.
var (
	// ErrHardwareUnavailable means the presented tag lacks the required technology.
	ErrHardwareUnavailable = errors.New("tag technology unavailable")
	// ErrAuthentication means a sector key was rejected or no key exists for the sector.
	ErrAuthentication = errors.New("sector authentication failed")
	// ErrRead means a transport error occurred on an authenticated block.
	ErrRead = errors.New("block read failed")
	// ErrSession means the tag connection could not be opened.
	ErrSession = errors.New("tag session fault")
)

// SWError represents a status word error from the reader or card.
type SWError struct {
	Cmd byte   // Command INS byte
	SW  uint16 // Status word
}

func (e *SWError) Error() string {
	return fmt.Sprintf("card command 0x%02X failed with SW=0x%04X (%s)", e.Cmd, e.SW, swDescription(e.SW))
}

// swDescription returns a human-readable description of a status word.
func swDescription(sw uint16) string {
	switch sw {
	case SWSuccess:
		return "success"
	case SWWarning:
		return "end of data"
	case SWAuthFailed:
		return "operation failed"
	case SWWrongLength:
		return "wrong length"
	case SWSecurityNotSatisfied:
		return "security not satisfied"
	case SWKeyNotLoaded:
		return "key not loaded"
	case SWFunctionNotSupported:
		return "function not supported"
	case SWWrongP1P2:
		return "wrong P1/P2"
	default:
		if (sw & 0xFF00) == SWWrongLe {
			return fmt.Sprintf("wrong Le (correct Le=%d)", sw&0xFF)
		}
		return "unknown error"
	}
}

// IsAuthError checks if an error is an authentication-related status word error.
func IsAuthError(err error) bool {
	var swErr *SWError
	if errors.As(err, &swErr) {
		return swErr.SW == SWAuthFailed || swErr.SW == SWSecurityNotSatisfied || swErr.SW == SWKeyNotLoaded
	}
	return false
}

// SwOK checks if a status word indicates success.
func SwOK(sw uint16) bool {
	return sw == SWSuccess
}

// BlockError describes a failed tag operation on one block.
type BlockError struct {
	Op     string // "auth" or "read"
	Sector int
	Block  int
	Kind   error // ErrAuthentication or ErrRead
	Cause  error // Underlying transport or card error, may be nil
}

func (e *BlockError) Error() string {
	if e == nil {
		return "block error"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s sector %d block %d: %v: %v", e.Op, e.Sector, e.Block, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s sector %d block %d: %v", e.Op, e.Sector, e.Block, e.Kind)
}

// Unwrap exposes both the error kind and the underlying cause to errors.Is/As.
func (e *BlockError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := []error{e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}
