// Command kyrielockctl is the reference host binding for the engine: a
// CLI that drives the file-level encrypt/decrypt/hash/hint operations
// over a password supplied on the command line or at an interactive,
// non-echoing prompt.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/kyrielock/lockcore/internal/hashutil"
	"github.com/kyrielock/lockcore/internal/kerr"
	"github.com/kyrielock/lockcore/internal/pipeline"
)

var (
	buildVersion = "0"
	buildCommit  = "0"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var opts cliOptions
	if err := processOpts(&opts); err != nil {
		logrus.WithError(err).Error("could not initialize kyrielockctl")
		os.Exit(1)
	}

	if err := validateOpts(&opts); err != nil {
		logrus.WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	if err := run(&opts); err != nil {
		logrus.WithError(err).Error("operation failed")
		os.Exit(exitCodeFor(err))
	}
}

func validateOpts(opts *cliOptions) error {
	opts.SourceFilename = strings.TrimSpace(opts.SourceFilename)
	opts.TargetFilename = strings.TrimSpace(opts.TargetFilename)
	opts.Password = strings.TrimSpace(opts.Password)

	needsPassword := opts.Operation == opEncrypt || opts.Operation == opDecrypt
	if needsPassword && opts.Password == "" {
		password, err := promptForPassword()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		opts.Password = password
	}
	if needsPassword && opts.Password == "" {
		return errors.New("password cannot be empty")
	}
	if len(opts.Hint) > 32 {
		logrus.Warn("hint longer than 32 bytes will be truncated by the container header")
	}

	return nil
}

func run(opts *cliOptions) error {
	ctx := context.Background()

	switch opts.Operation {
	case opHash:
		sum, err := hashutil.HashFile(opts.SourceFilename)
		if err != nil {
			return err
		}
		fmt.Println(sum)
		return nil

	case opHintOnly:
		hint, err := pipeline.ReadHint(opts.SourceFilename)
		if err != nil {
			return err
		}
		fmt.Println(string(hint))
		return nil

	case opDecrypt:
		logrus.WithFields(logrus.Fields{
			"source": opts.SourceFilename,
			"target": opts.TargetFilename,
		}).Info("decrypting")
		return pipeline.DecryptFile(ctx, opts.SourceFilename, opts.TargetFilename, []byte(opts.Password), opts.Mobile, opts.CPUCores)

	default:
		logrus.WithFields(logrus.Fields{
			"source": opts.SourceFilename,
			"target": opts.TargetFilename,
		}).Info("encrypting")
		return pipeline.EncryptFile(ctx, opts.SourceFilename, opts.TargetFilename, []byte(opts.Password), []byte(opts.Hint), opts.Mobile, opts.CPUCores)
	}
}

// promptForPassword reads a password from the controlling terminal
// without echoing it to the screen.
func promptForPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// exitCodeFor mirrors the FFI façade's error-code collapse at the
// process-exit boundary: invalid arguments exit distinctly from
// operational failures so scripts can tell the two apart.
func exitCodeFor(err error) int {
	if errors.Is(err, kerr.ErrInvalidArgument) {
		return 2
	}
	return 1
}
