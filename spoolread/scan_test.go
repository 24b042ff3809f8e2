package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/barnettlynn/spooltools/pkg/bambu"
	"github.com/barnettlynn/spooltools/pkg/rfid"
	"github.com/barnettlynn/spooltools/pkg/spool"
)

func imageScanner(t *testing.T, secret bambu.Secret) *scanner {
	t.Helper()
	uid := []byte{0x04, 0xA3, 0xB2, 0xC1, 0x00, 0x11, 0x22}
	keys, err := bambu.DeriveKeys(secret, uid, rfid.Classic1KSectors)
	if err != nil {
		t.Fatalf("DeriveKeys: %v", err)
	}
	blocks, err := bambu.Encode(bambu.Fields{
		Material:       "PETG",
		ColorName:      "PETG HF",
		Color:          [3]byte{0x10, 0x20, 0x30},
		WeightGrams:    1000,
		DiameterMm:     1.75,
		ProductionDate: "24_01_15",
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := rfid.NewImage(uid, keys, blocks)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}

	registry := spool.NewRegistry()
	registry.Register(rfid.MifareClassic1K, bambu.NewReader(secret))
	return &scanner{
		registry: registry,
		format:   formatJSON,
		probe: func() (*rfid.TagInfo, rfid.ClassicTag, error) {
			return rfid.ProbeImage(img), rfid.NewImageTag(img), nil
		},
	}
}

func TestScanImage(t *testing.T) {
	var secret bambu.Secret
	secret[0] = 0x42
	s := imageScanner(t, secret)
	if err := s.scan(context.Background(), slog.Default()); err != nil {
		t.Fatalf("scan returned error: %v", err)
	}

	s.dump = true
	if err := s.scan(context.Background(), slog.Default()); err != nil {
		t.Fatalf("dump scan returned error: %v", err)
	}
}

func TestScanWrongSecretReportsAuthFailure(t *testing.T) {
	var secret bambu.Secret
	s := imageScanner(t, secret)
	secret[0] = 0x01
	s.registry.Register(rfid.MifareClassic1K, bambu.NewReader(secret))

	err := s.scan(context.Background(), slog.Default())
	if !errors.Is(err, rfid.ErrAuthentication) {
		t.Fatalf("expected authentication error, got %v", err)
	}
}

func TestScanUnsupportedFamilies(t *testing.T) {
	s := &scanner{registry: spool.NewRegistry()}

	s.probe = func() (*rfid.TagInfo, rfid.ClassicTag, error) {
		return &rfid.TagInfo{UID: []byte{1, 2, 3, 4, 5, 6, 7}, Type: rfid.Ntag215}, nil, nil
	}
	if err := s.scan(context.Background(), slog.Default()); !errors.Is(err, spool.ErrNotImplemented) {
		t.Fatalf("expected not implemented error, got %v", err)
	}

	s.probe = func() (*rfid.TagInfo, rfid.ClassicTag, error) {
		return &rfid.TagInfo{UID: []byte{1, 2, 3, 4}, Type: rfid.Unsupported}, nil, nil
	}
	err := s.scan(context.Background(), slog.Default())
	if !errors.Is(err, spool.ErrUnsupportedTag) || !errors.Is(err, rfid.ErrHardwareUnavailable) {
		t.Fatalf("expected unsupported tag error, got %v", err)
	}
}

func TestScanProbeFailure(t *testing.T) {
	s := &scanner{
		registry: spool.NewRegistry(),
		probe: func() (*rfid.TagInfo, rfid.ClassicTag, error) {
			return nil, nil, rfid.ErrHardwareUnavailable
		},
	}
	if err := s.scan(context.Background(), slog.Default()); !errors.Is(err, rfid.ErrHardwareUnavailable) {
		t.Fatalf("expected hardware error, got %v", err)
	}
}
