package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/oneminute/oneminute-go/internal/clipboard"
	"github.com/oneminute/oneminute-go/internal/config"
	"github.com/oneminute/oneminute-go/internal/crypto"
	"github.com/oneminute/oneminute-go/internal/logging"
	"github.com/oneminute/oneminute-go/internal/model"
	"github.com/oneminute/oneminute-go/internal/service"
	"github.com/oneminute/oneminute-go/internal/session"
)

// Config holds the parsed CLI flags. Nil options and a zero length mean the
// value comes from the defaults file.
type Config struct {
	Length       int
	Uppercase    *bool
	Lowercase    *bool
	Numbers      *bool
	Symbols      *bool
	Count        int
	Copy         bool
	Hide         bool
	DefaultsFile string
}

// ParseFlags registers and parses command-line flags on fs.
func ParseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	var upper, lower, numbers, symbols bool

	fs.IntVar(&cfg.Length, "length", 0, fmt.Sprintf("Password length (%d-%d)", crypto.MinLength, crypto.MaxLength))
	fs.BoolVar(&upper, "uppercase", true, "Include uppercase letters")
	fs.BoolVar(&lower, "lowercase", true, "Include lowercase letters")
	fs.BoolVar(&numbers, "numbers", true, "Include digits (0-9)")
	fs.BoolVar(&symbols, "symbols", true, "Include special symbols")
	fs.IntVar(&cfg.Count, "count", 1, "Number of passwords to generate")
	fs.BoolVar(&cfg.Copy, "copy", false, "Copy the last password to the system clipboard")
	fs.BoolVar(&cfg.Hide, "hide", false, "Mask passwords in the output")
	fs.StringVar(&cfg.DefaultsFile, "config", "", "Path to a HuJSON defaults file (default $DEFAULTS_FILE)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "uppercase":
			cfg.Uppercase = &upper
		case "lowercase":
			cfg.Lowercase = &lower
		case "numbers":
			cfg.Numbers = &numbers
		case "symbols":
			cfg.Symbols = &symbols
		}
	})

	if cfg.Length != 0 && (cfg.Length < crypto.MinLength || cfg.Length > crypto.MaxLength) {
		return Config{}, fmt.Errorf("-length must be between %d and %d", crypto.MinLength, crypto.MaxLength)
	}
	if cfg.Count < 1 {
		return Config{}, errors.New("-count must be at least 1")
	}
	return cfg, nil
}

// Run generates cfg.Count passwords and writes one line per password plus its
// strength to w. With cfg.Copy the last password is sent to cb; a clipboard
// failure is logged and only leaves out the acknowledgment.
func Run(ctx context.Context, cfg Config, defaults service.Defaults, cb clipboard.Writer, w io.Writer) error {
	length := defaults.Length
	if cfg.Length != 0 {
		length = cfg.Length
	}
	opts := crypto.Options{
		Uppercase: pick(cfg.Uppercase, defaults.Options.Uppercase),
		Lowercase: pick(cfg.Lowercase, defaults.Options.Lowercase),
		Numbers:   pick(cfg.Numbers, defaults.Options.Numbers),
		Symbols:   pick(cfg.Symbols, defaults.Options.Symbols),
	}

	var last *session.Session
	for i := 0; i < cfg.Count; i++ {
		id, err := session.NewID(time.Now())
		if err != nil {
			return err
		}
		sess := session.New(id, session.Config{Length: length, Options: &opts, Clipboard: cb})
		defer sess.Close()

		snap := sess.Snapshot()
		if cfg.Hide {
			snap = sess.ToggleVisibility()
		}
		view := model.NewSessionResponse(snap)
		if _, err := fmt.Fprintf(w, "%s\t%s (%d/%d)\n", view.Password, view.Strength.Rating, view.Strength.Score, crypto.MaxScore); err != nil {
			return err
		}
		last = sess
	}

	if cfg.Copy && last != nil && last.Copy(ctx) {
		if _, err := fmt.Fprintln(w, "Copied!"); err != nil {
			return err
		}
	}
	return nil
}

func pick(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()
	logging.NewLogger(os.Getenv("LOG_LEVEL"), os.Stderr)

	cfg, err := ParseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	if cfg.DefaultsFile == "" {
		cfg.DefaultsFile = os.Getenv("DEFAULTS_FILE")
	}

	defaults, err := config.LoadDefaults(cfg.DefaultsFile)
	if err != nil {
		slog.Error("invalid generator defaults", "error", err)
		os.Exit(1)
	}

	var cb clipboard.Writer = clipboard.Unavailable{}
	if cfg.Copy {
		cb = clipboard.System{}
	}

	if err := Run(context.Background(), cfg, defaults, cb, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
