package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pborman/getopt/v2"
	"github.com/sirupsen/logrus"
)

type operation uint8

const (
	opEncrypt operation = iota
	opDecrypt
	opHash
	opHintOnly
)

// cliOptions holds the parsed command-line configuration for one run.
type cliOptions struct {
	SourceFilename string
	TargetFilename string
	Operation      operation
	Password       string
	Hint           string
	Mobile         bool
	CPUCores       int
}

// envOverrides lets a host environment set device-class defaults
// without touching the command line, picked up before flags so an
// explicit flag always wins.
type envOverrides struct {
	Mobile   bool `envconfig:"MOBILE"`
	CPUCores int  `envconfig:"CPU_CORES"`
}

const maxPositionalArgs = 2

func defaultOptions() cliOptions {
	return cliOptions{
		Operation: opEncrypt,
		CPUCores:  0, // 0 means "detect at runtime", see tuner.DetectCPUCores
	}
}

// processOpts parses environment overrides and then command-line flags
// into opts; an explicit flag always wins over its environment default.
func processOpts(opts *cliOptions) error {
	if opts == nil {
		return errors.New("options is nil")
	}
	*opts = defaultOptions()

	var env envOverrides
	if err := envconfig.Process("kyrielock", &env); err != nil {
		return fmt.Errorf("reading environment overrides: %w", err)
	}
	opts.Mobile = env.Mobile
	opts.CPUCores = env.CPUCores

	var (
		help       bool
		version    bool
		decrypting bool
		hashing    bool
		hintOnly   bool
	)

	getopt.FlagLong(&help, "help", '?', "Display help")
	getopt.FlagLong(&version, "version", 0, "Display version information")
	getopt.FlagLong(&decrypting, "decrypt", 'd', "Decrypt the source file instead of encrypt")
	getopt.FlagLong(&hashing, "hash", 'h', "SHA-256 hash a file instead of encrypting or decrypting")
	getopt.FlagLong(&hintOnly, "hint-only", 'i', "Print the stored hint for an encrypted file and exit")
	getopt.FlagLong(&opts.Password, "password", 'p', "Password to derive key material from")
	getopt.FlagLong(&opts.Hint, "hint", 'n', "Hint to store in the header (max 32 bytes, encrypt only)")
	getopt.FlagLong(&opts.Mobile, "mobile", 'm', "Tune for a mobile device class instead of desktop")
	getopt.FlagLong(&opts.CPUCores, "cores", 'c', "Override detected CPU core count used for tuning")

	getopt.Parse()

	if help {
		showHelp()
		os.Exit(0)
	}
	if version {
		showVersionInfo()
		os.Exit(0)
	}

	chosen := 0
	for _, flag := range []bool{decrypting, hashing, hintOnly} {
		if flag {
			chosen++
		}
	}
	if chosen > 1 {
		logrus.Fatal("only one of --decrypt, --hash, --hint-only may be specified")
	}

	switch {
	case decrypting:
		opts.Operation = opDecrypt
	case hashing:
		opts.Operation = opHash
	case hintOnly:
		opts.Operation = opHintOnly
	default:
		opts.Operation = opEncrypt
	}

	if opts.CPUCores < 0 {
		opts.CPUCores = int(math.Max(0, float64(opts.CPUCores)))
	}

	args := getopt.Args()
	if len(args) >= 1 {
		opts.SourceFilename = args[0]
	}
	if len(args) >= 2 {
		opts.TargetFilename = args[1]
	}
	if len(args) > maxPositionalArgs {
		return fmt.Errorf("at most %d positional arguments accepted (source, target), got %d", maxPositionalArgs, len(args))
	}
	if opts.SourceFilename == "" {
		return errors.New("a source filename is required")
	}
	if (opts.Operation == opEncrypt || opts.Operation == opDecrypt) && opts.TargetFilename == "" {
		return errors.New("a target filename is required for encrypt/decrypt")
	}

	return nil
}

func showHelp() {
	fmt.Println("kyrielockctl [flags] <source> [target]")
	fmt.Println()
	fmt.Println("  kyrielockctl --password=hunter2 plain.txt plain.txt.lock")
	fmt.Println("  kyrielockctl -d --password=hunter2 plain.txt.lock plain.txt")
	fmt.Println("  kyrielockctl --hash plain.txt")
	fmt.Println("  kyrielockctl --hint-only plain.txt.lock")
	fmt.Println()
	getopt.Usage()
}

func showVersionInfo() {
	fmt.Printf("kyrielockctl version %s (commit %s)\n", buildVersion, buildCommit)
}
