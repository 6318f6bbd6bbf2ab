/*
 * comvm - Configuration file parser tests
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

package configparser

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "comvm.cfg")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoadMemorySetting(t *testing.T) {
	path := writeConfig(t, "mem=64\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MemoryKB != 64 {
		t.Errorf("MemoryKB got: %v expected: 64", cfg.MemoryKB)
	}
}

func TestLoadIgnoresCommentsAndBlankLines(t *testing.T) {
	path := writeConfig(t, "# a comment\n\nmem=128 # trailing comment\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MemoryKB != 128 {
		t.Errorf("MemoryKB got: %v expected: 128", cfg.MemoryKB)
	}
}

func TestLoadUnknownKeyIsError(t *testing.T) {
	path := writeConfig(t, "bogus=1\n")
	if _, err := Load(path); err == nil {
		t.Errorf("expected error for unknown key, got nil")
	}
}

func TestLoadTraceAndBreaks(t *testing.T) {
	path := writeConfig(t, "trace=on\nbreak=0106\nbreak=0200\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.Trace {
		t.Errorf("Trace got: false expected: true")
	}
	if len(cfg.Breaks) != 2 || cfg.Breaks[0] != 0x0106 || cfg.Breaks[1] != 0x0200 {
		t.Errorf("Breaks got: %v expected: [0106 0200]", cfg.Breaks)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.cfg")); err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
}
