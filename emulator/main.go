package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/barnettlynn/spooltools/pkg/bambu"
	"github.com/barnettlynn/spooltools/pkg/rfid"
)

func main() {
	var (
		uidHex     = flag.String("uid", "", "8 or 14 hex chars (4- or 7-byte tag UID, required)")
		spoolPath  = flag.String("spool", "testdata/spool.yaml", "Path to spool description YAML")
		secretFile = flag.String("secret-file", "../keys/master.hex", "Path to master secret .hex file")
		outPath    = flag.String("out", "", "Output image path (default: <UID>.bin)")
		verify     = flag.Bool("verify", false, "Read the generated image back and print the decoded record")
		verbose    = flag.Bool("v", false, "Enable debug logging")
		logFormat  = flag.String("log-format", "text", "Log format: text or json")
	)
	flag.Parse()

	// Setup logging
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if *logFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	// Validate required flags
	if *uidHex == "" {
		fmt.Fprintf(os.Stderr, "Error: -uid is required\n")
		flag.Usage()
		os.Exit(1)
	}
	uid, err := parseUID(*uidHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	slog.Debug("Loading master secret", "path", *secretFile)
	secret, err := bambu.LoadSecretHexFile(*secretFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading master secret: %v\n", err)
		os.Exit(1)
	}

	slog.Debug("Loading spool description", "path", *spoolPath)
	sf, err := loadSpoolFile(*spoolPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	img, err := buildImage(secret, uid, sf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building image: %v\n", err)
		os.Exit(1)
	}

	out := *outPath
	if out == "" {
		out = strings.ToUpper(hex.EncodeToString(uid)) + ".bin"
	}
	if err := img.Save(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("UID:    %X\n", uid)
	fmt.Printf("Spool:  %s\n", *spoolPath)
	fmt.Printf("Image:  %s\n", out)

	if *verify {
		slog.Debug("Verifying generated image")
		rec, err := bambu.NewReader(secret).Read(context.Background(), img.UID(), rfid.NewImageTag(img))
		if err != nil {
			fmt.Printf("Verify: FAILED (%v)\n", err)
			os.Exit(1)
		}
		fmt.Printf("Verify: OK\n\n")
		rec.Print(os.Stdout)
	}
}

func parseUID(s string) ([]byte, error) {
	uid, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decoding UID: %w", err)
	}
	if len(uid) != 4 && len(uid) != 7 {
		return nil, fmt.Errorf("UID must be 4 or 7 bytes, got %d", len(uid))
	}
	return uid, nil
}

// buildImage derives the sector keys for uid and lays the spool out in a
// Classic 1K image.
func buildImage(secret bambu.Secret, uid []byte, sf *spoolFile) (*rfid.Image, error) {
	fields, err := sf.fields()
	if err != nil {
		return nil, err
	}
	blocks, err := bambu.Encode(fields)
	if err != nil {
		return nil, err
	}
	keys, err := bambu.DeriveKeys(secret, uid, rfid.Classic1KSectors)
	if err != nil {
		return nil, err
	}
	return rfid.NewImage(uid, keys, blocks)
}
