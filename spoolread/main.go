package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/barnettlynn/spooltools/pkg/bambu"
	"github.com/barnettlynn/spooltools/pkg/rfid"
	"github.com/barnettlynn/spooltools/pkg/spool"
	"github.com/barnettlynn/spooltools/spoolread/internal/config"
)

const configFileName = "config.yaml"

// scanner reads one presented tag. Reader mode probes the PC/SC reader on
// every scan; image mode always presents the same image.
type scanner struct {
	registry *spool.Registry
	dump     bool
	format   outputFormat
	probe    func() (*rfid.TagInfo, rfid.ClassicTag, error)
}

func main() {
	verbose := flag.Bool("v", false, "enable debug logging")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	traceKeys := flag.Bool("trace-keys", false, "log derived sector keys (implies -v)")
	configFlag := flag.String("config", "", "path to config.yaml (default: next to executable, then cwd)")
	dump := flag.Bool("dump", false, "dump every readable block instead of decoding")
	imagePath := flag.String("image", "", "read a 1024-byte tag image file instead of a reader")
	watch := flag.Bool("watch", false, "keep waiting for tag scans until interrupted")
	formatFlag := flag.String("format", "auto", "record output: auto, text, json or yaml")
	flag.Parse()

	// Configure slog
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	if *traceKeys {
		level = bambu.LevelTrace
	}
	opts := &slog.HandlerOptions{Level: level}
	var base *slog.Logger
	if *logFormat == "json" {
		base = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	} else {
		base = slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	slog.SetDefault(base)

	format, err := parseOutputFormat(*formatFlag)
	if err != nil {
		log.Fatalf("-format: %v", err)
	}
	if *watch && *imagePath != "" {
		log.Fatalf("-watch cannot be combined with -image")
	}

	configPath := *configFlag
	if configPath == "" {
		configPath, err = defaultConfigPath()
		if err != nil {
			log.Fatalf("resolve config path failed: %v", err)
		}
	}
	slog.Debug("using config", "path", configPath)

	mode := config.ValidationReader
	if *imagePath != "" {
		mode = config.ValidationImage
	}
	cfg, err := config.LoadWithMode(configPath, mode)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	secret, err := bambu.LoadSecretHexFile(cfg.Keys.MasterSecretFile)
	if err != nil {
		log.Fatalf("master secret file invalid: %v", err)
	}

	reader := bambu.NewReader(secret)
	reader.SectorCount = cfg.Runtime.SectorCount
	reader.DatePolicy = cfg.DatePolicy()

	registry := spool.NewRegistry()
	registry.Register(rfid.MifareClassic1K, reader)

	s := &scanner{registry: registry, dump: *dump, format: format}
	if *imagePath != "" {
		img, err := rfid.LoadImage(*imagePath)
		if err != nil {
			log.Fatalf("load image failed: %v", err)
		}
		s.probe = func() (*rfid.TagInfo, rfid.ClassicTag, error) {
			return rfid.ProbeImage(img), rfid.NewImageTag(img), nil
		}
	} else {
		readerIndex := *cfg.Runtime.ReaderIndex
		s.probe = func() (*rfid.TagInfo, rfid.ClassicTag, error) {
			info, err := rfid.Probe(readerIndex)
			if err != nil {
				return nil, nil, err
			}
			return info, rfid.NewPCSCTag(readerIndex), nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *watch {
		if err := watchReader(ctx, *cfg.Runtime.ReaderIndex, func() {
			if err := s.scan(ctx, base); err != nil {
				slog.Error("scan failed", "error", err)
			}
		}); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("watch failed: %v", err)
		}
		return
	}

	if err := s.scan(ctx, base); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// scan handles one presentment. Every log line it emits carries a fresh
// scan id.
func (s *scanner) scan(ctx context.Context, base *slog.Logger) error {
	slog.SetDefault(base.With("scan", uuid.NewString()))
	defer slog.SetDefault(base)

	info, tag, err := s.probe()
	if err != nil {
		return fmt.Errorf("probe tag: %w", err)
	}
	slog.Info("tag detected", "uid", info.UIDHex(), "type", info.Type)

	if s.dump {
		result, err := s.registry.Dump(ctx, info, tag)
		if result != nil {
			rfid.PrintDump(os.Stdout, result)
		}
		return err
	}

	rec, err := s.registry.Read(ctx, info, tag)
	if err != nil {
		return err
	}
	return writeRecord(os.Stdout, rec, s.format)
}

func defaultConfigPath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", err
	}
	exeConfigPath := filepath.Join(filepath.Dir(exePath), configFileName)
	if fileExists(exeConfigPath) {
		return exeConfigPath, nil
	}

	// Fallback for `go run`, where the executable is placed in a temp directory.
	cwd, err := os.Getwd()
	if err != nil {
		return exeConfigPath, nil
	}
	cwdConfigPath := filepath.Join(cwd, configFileName)
	if fileExists(cwdConfigPath) {
		return cwdConfigPath, nil
	}
	return exeConfigPath, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
