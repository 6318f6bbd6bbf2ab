/*
 * comvm - Configuration file parser
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package configparser reads the emulator's optional startup config file
// (spec SPEC_FULL §2.8): one "key=value" setting per line, blank lines
// and '#'-led comments ignored. There is no device/model registry here,
// unlike the teacher's version -- this emulator has no channel devices
// to configure, only a handful of scalar run options.
package configparser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Config is the parsed contents of a config file.
type Config struct {
	MemoryKB int      // 0 means "use the default"
	Trace    bool     // start with per-instruction trace logging enabled
	Breaks   []uint16 // initial IP breakpoints, debugger mode only
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := &Config{}
	reader := bufio.NewReader(file)
	lineNumber := 0
	for {
		raw, err := reader.ReadString('\n')
		lineNumber++
		if len(raw) == 0 && err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		if parseErr := parseLine(cfg, raw, lineNumber); parseErr != nil {
			return nil, parseErr
		}
		if err == io.EOF {
			break
		}
	}
	return cfg, nil
}

func parseLine(cfg *Config, raw string, lineNumber int) error {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return nil
	}

	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return fmt.Errorf("config line %d: expected key=value, got %q", lineNumber, line)
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case "mem":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("config line %d: mem requires a number of KB: %w", lineNumber, err)
		}
		cfg.MemoryKB = n
	case "trace":
		switch strings.ToLower(value) {
		case "on", "true":
			cfg.Trace = true
		case "off", "false":
			cfg.Trace = false
		default:
			return fmt.Errorf("config line %d: trace requires on/off", lineNumber)
		}
	case "break":
		addr, err := strconv.ParseUint(value, 16, 16)
		if err != nil {
			return fmt.Errorf("config line %d: break requires a hex address: %w", lineNumber, err)
		}
		cfg.Breaks = append(cfg.Breaks, uint16(addr))
	default:
		return fmt.Errorf("config line %d: unknown key: %s", lineNumber, key)
	}
	return nil
}
