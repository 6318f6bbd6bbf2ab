/*
comvm console device interface

	Copyright (c) 2024, Richard Cornwell

	Permission is hereby granted, free of charge, to any person obtaining a
	copy of this software and associated documentation files (the "Software"),
	to deal in the Software without restriction, including without limitation
	the rights to use, copy, modify, merge, publish, distribute, sublicense,
	and/or sell copies of the Software, and to permit persons to whom the
	Software is furnished to do so, subject to the following conditions:

	The above copyright notice and this permission notice shall be included in
	all copies or substantial portions of the Software.

	THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
	IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
	FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
	RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
	IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
	CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*/

// Package device defines the host-side collaborators the CPU core talks
// to: the console byte sink used by the DOS interrupt services. Screen,
// keyboard, and any future BIOS/video peripheral live outside the core
// (spec §1) and are reached only through this interface.
package device

// Sink receives bytes written by the emulated program's console output.
type Sink interface {
	Put(b byte)
}

// StdoutSink writes to the host's standard output, filtering out carriage
// returns so that CR/LF text appears as plain LF (spec §6 console sink
// contract).
type StdoutSink struct {
	write func(b byte)
}

// NewStdoutSink builds a Sink backed by write, typically os.Stdout's
// single-byte Write.
func NewStdoutSink(write func(b byte)) *StdoutSink {
	return &StdoutSink{write: write}
}

// Put emits b unless it is a carriage return.
func (s *StdoutSink) Put(b byte) {
	if b == '\r' {
		return
	}
	s.write(b)
}

// NullSink writes nothing to the host; it keeps every byte in Captured,
// for tests that inspect console output.
type NullSink struct {
	Captured []byte
}

// Put records b (minus carriage returns) for later inspection by tests.
func (s *NullSink) Put(b byte) {
	if b == '\r' {
		return
	}
	s.Captured = append(s.Captured, b)
}
