package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/dhamidi/serialdump/stream"
)

// inputSource names where the stream bytes come from.
type inputSource struct {
	hexArg  string
	hexFile string
	rawFile string
	// stdinMode is "hex" or "raw".
	stdinMode string
}

var errNoInput = errors.New("no input: pass a hex string, -f <hex file>, -r <raw file>, or pipe a stream on stdin")

func (src inputSource) read(stdin io.Reader) ([]byte, error) {
	given := 0
	for _, s := range []string{src.hexArg, src.hexFile, src.rawFile} {
		if s != "" {
			given++
		}
	}
	if given > 1 {
		return nil, errors.New("give only one of a hex argument, -f or -r")
	}

	switch {
	case src.hexArg != "":
		return stream.DecodeHex(src.hexArg)
	case src.hexFile != "":
		data, err := os.ReadFile(src.hexFile)
		if err != nil {
			return nil, fmt.Errorf("read hex file: %w", err)
		}
		return stream.DecodeHex(string(data))
	case src.rawFile != "":
		data, err := os.ReadFile(src.rawFile)
		if err != nil {
			return nil, fmt.Errorf("read stream file: %w", err)
		}
		return data, nil
	}

	if isTerminal(stdin) {
		return nil, errNoInput
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	if src.stdinMode == "raw" {
		return data, nil
	}
	return stream.DecodeHex(string(data))
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// readStreamFile loads a stream from disk. Files named *.hex or *.txt hold
// a hex dump; anything else is raw bytes.
func readStreamFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".txt":
		return stream.DecodeHex(string(data))
	default:
		return data, nil
	}
}
