// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package obfuscated

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/securestring/lib/secret"
)

// chunkSize is the size of the scratch region used to move plaintext
// between a String and an io.Reader or io.Writer.
const chunkSize = 256

var (
	// ErrEmpty is returned by ReadFromPath when the source holds
	// nothing but whitespace.
	ErrEmpty = errors.New("obfuscated: secret is empty")

	// ErrLimit is returned by FromReader when the reader yields more
	// than the limit.
	ErrLimit = errors.New("obfuscated: input exceeds limit")
)

// FromReader reads reader to EOF into a new String. The plaintext passes
// through a small scratch region from the configured allocator that is
// wiped after every read. Reading more than limit bytes fails with
// ErrLimit; limit must be positive.
func FromReader(reader io.Reader, limit int, options Options) (*String, error) {
	if limit <= 0 || limit > MaxLength {
		return nil, fmt.Errorf("obfuscated: limit must be in (0, %d], got %d", MaxLength, limit)
	}
	options = options.withDefaults()

	scratch, err := options.Allocator.Allocate(chunkSize)
	if err != nil {
		return nil, fmt.Errorf("obfuscated: allocating scratch: %w", err)
	}
	defer scratch.Close()
	chunk := scratch.Bytes()

	s, err := newString(options.DefaultCapacity, options)
	if err != nil {
		return nil, err
	}

	total := 0
	for {
		count, readError := reader.Read(chunk)
		total += count
		if total > limit {
			secret.Zero(chunk)
			s.Close()
			return nil, ErrLimit
		}
		appendError := s.Append(chunk[:count])
		secret.Zero(chunk[:count])
		if appendError != nil {
			s.Close()
			return nil, appendError
		}
		if readError == io.EOF {
			return s, nil
		}
		if readError != nil {
			s.Close()
			return nil, fmt.Errorf("obfuscated: reading secret: %w", readError)
		}
	}
}

// WriteTo writes the plaintext to writer and implements io.WriterTo.
// The content is decoded a chunk at a time into a scratch region that is
// wiped after each write. The String stays locked while writer runs, so
// writer must not call back into it.
func (s *String) WriteTo(writer io.Writer) (int64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	scratch, err := s.options.Allocator.Allocate(chunkSize)
	if err != nil {
		return 0, fmt.Errorf("obfuscated: allocating scratch: %w", err)
	}
	defer scratch.Close()
	chunk := scratch.Bytes()

	var written int64
	length := s.loadLength()
	for start := uint32(0); start < length; {
		count := min(uint32(len(chunk)), length-start)
		for index := range count {
			chunk[index] = s.decode(start + index)
		}
		n, writeError := writer.Write(chunk[:count])
		secret.Zero(chunk[:count])
		written += int64(n)
		if writeError != nil {
			return written, writeError
		}
		if n < int(count) {
			return written, io.ErrShortWrite
		}
		start += count
	}
	return written, nil
}

// ReadFromPath reads a secret from a file path, or the first line of
// stdin if path is "-". Leading and trailing whitespace is trimmed, and
// every intermediate copy this function makes is wiped. Returns ErrEmpty
// if nothing is left after trimming.
func ReadFromPath(path string, options Options) (*String, error) {
	var data []byte

	if path == "-" {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return nil, ErrEmpty
		}
		data = scanner.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}
	defer secret.Zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}
	return FromBytes(trimmed, options)
}

// ReadFromTerminal reads a line from the terminal on fd with echo
// disabled, as for a password prompt. The caller prints the prompt. The
// bytes returned by the terminal are wiped once stored.
func ReadFromTerminal(fd int, options Options) (*String, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("obfuscated: file descriptor %d is not a terminal", fd)
	}
	password, err := term.ReadPassword(fd)
	if err != nil {
		secret.Zero(password)
		return nil, fmt.Errorf("obfuscated: reading from terminal: %w", err)
	}
	return FromOwned(Own(password), options)
}
