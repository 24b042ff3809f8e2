package spool

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barnettlynn/spooltools/pkg/rfid"
)

type stubReader struct {
	gotUID []byte
	dumped bool
}

func (s *stubReader) Read(ctx context.Context, uid []byte, tag rfid.ClassicTag) (*Record, error) {
	s.gotUID = uid
	return &Record{Manufacturer: "stub", UID: "01020304"}, nil
}

type stubDumper struct{ stubReader }

func (s *stubDumper) Dump(ctx context.Context, uid []byte, tag rfid.ClassicTag) (*rfid.DumpResult, error) {
	s.dumped = true
	return &rfid.DumpResult{UID: uid}, nil
}

func TestRegistryDispatchesByTagType(t *testing.T) {
	reg := NewRegistry()
	rd := &stubReader{}
	reg.Register(rfid.MifareClassic1K, rd)

	info := &rfid.TagInfo{UID: []byte{1, 2, 3, 4}, Type: rfid.MifareClassic1K}
	rec, err := reg.Read(context.Background(), info, nil)
	require.NoError(t, err)
	assert.Equal(t, "stub", rec.Manufacturer)
	assert.Equal(t, info.UID, rd.gotUID)
}

func TestRegistryAcknowledgedButUnimplementedFamilies(t *testing.T) {
	reg := NewRegistry()
	for _, tt := range []rfid.TagType{rfid.Ntag213, rfid.Ntag215, rfid.Ntag216} {
		_, err := reg.Read(context.Background(), &rfid.TagInfo{Type: tt}, nil)
		assert.ErrorIs(t, err, ErrNotImplemented, tt.String())
		assert.NotErrorIs(t, err, rfid.ErrHardwareUnavailable)
	}
}

func TestRegistryUnsupportedTag(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Read(context.Background(), &rfid.TagInfo{Type: rfid.Unsupported}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedTag)
	assert.ErrorIs(t, err, rfid.ErrHardwareUnavailable)

	_, err = reg.Lookup(rfid.MifareClassic1K)
	assert.ErrorIs(t, err, ErrUnsupportedTag)
}

func TestRegistryDump(t *testing.T) {
	reg := NewRegistry()
	reg.Register(rfid.MifareClassic1K, &stubReader{})
	_, err := reg.Dump(context.Background(), &rfid.TagInfo{Type: rfid.MifareClassic1K}, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)

	d := &stubDumper{}
	reg.Register(rfid.MifareClassic1K, d)
	result, err := reg.Dump(context.Background(), &rfid.TagInfo{UID: []byte{9}, Type: rfid.MifareClassic1K}, nil)
	require.NoError(t, err)
	assert.True(t, d.dumped)
	assert.Equal(t, []byte{9}, result.UID)
}

func TestRecordColorsAndPrint(t *testing.T) {
	rec := &Record{
		Manufacturer:   "Bambu Lab",
		Material:       "PLA",
		ColorName:      "PLA Basic",
		ColorHex:       "#FF0000-#0000FF",
		WeightGrams:    1000,
		DiameterMm:     1.75,
		ProductionDate: "2024/01/15",
		UID:            "04A3B2C1001122",
	}
	assert.Equal(t, []string{"#FF0000", "#0000FF"}, rec.Colors())
	assert.Nil(t, (&Record{}).Colors())

	var buf bytes.Buffer
	rec.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "Color:            #FF0000 + #0000FF\n")
	assert.Contains(t, out, "Weight:           1000 g\n")
	assert.Contains(t, out, "Diameter:         1.75 mm\n")
}
