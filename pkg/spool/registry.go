package spool

import (
	"context"
	"errors"
	"fmt"

	"github.com/barnettlynn/spooltools/pkg/rfid"
)

var (
	// ErrUnsupportedTag means no known family matches the presented tag.
	ErrUnsupportedTag = fmt.Errorf("%w: unsupported tag", rfid.ErrHardwareUnavailable)
	// ErrNotImplemented means the tag family is recognised but has no reader.
	ErrNotImplemented = errors.New("tag family not implemented")
)

// Reader decodes spool records from one tag family.
type Reader interface {
	Read(ctx context.Context, uid []byte, tag rfid.ClassicTag) (*Record, error)
}

// Dumper is implemented by readers that support a full diagnostic dump.
type Dumper interface {
	Dump(ctx context.Context, uid []byte, tag rfid.ClassicTag) (*rfid.DumpResult, error)
}

// Registry maps tag types to readers.
type Registry struct {
	readers map[rfid.TagType]Reader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[rfid.TagType]Reader)}
}

// Register installs rd for tag type t, replacing any previous reader.
func (r *Registry) Register(t rfid.TagType, rd Reader) {
	r.readers[t] = rd
}

// Lookup returns the reader for t. NTAG families are recognised but have
// no reader, and report ErrNotImplemented unless one was registered.
func (r *Registry) Lookup(t rfid.TagType) (Reader, error) {
	if rd, ok := r.readers[t]; ok {
		return rd, nil
	}
	switch t {
	case rfid.Ntag213, rfid.Ntag215, rfid.Ntag216:
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, t)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTag, t)
	}
}

// Read dispatches to the reader registered for info.Type.
func (r *Registry) Read(ctx context.Context, info *rfid.TagInfo, tag rfid.ClassicTag) (*Record, error) {
	rd, err := r.Lookup(info.Type)
	if err != nil {
		return nil, err
	}
	return rd.Read(ctx, info.UID, tag)
}

// Dump dispatches a diagnostic dump to the reader registered for info.Type.
func (r *Registry) Dump(ctx context.Context, info *rfid.TagInfo, tag rfid.ClassicTag) (*rfid.DumpResult, error) {
	rd, err := r.Lookup(info.Type)
	if err != nil {
		return nil, err
	}
	d, ok := rd.(Dumper)
	if !ok {
		return nil, fmt.Errorf("%w: %s dump", ErrNotImplemented, info.Type)
	}
	return d.Dump(ctx, info.UID, tag)
}
