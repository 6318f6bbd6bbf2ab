/*
 * comvm - Main process.
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

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	reader "github.com/rcornwell/comvm/command/reader"
	config "github.com/rcornwell/comvm/config/configparser"
	core "github.com/rcornwell/comvm/emu/core"
	cpu "github.com/rcornwell/comvm/emu/cpu"
	dev "github.com/rcornwell/comvm/emu/device"
	mem "github.com/rcornwell/comvm/emu/memory"
	logger "github.com/rcornwell/comvm/util/logger"
)

const defaultImage = "hello.com"

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optTrace := getopt.BoolLong("trace", 't', "Enable per-instruction trace logging")
	optMemKB := getopt.IntLong("mem", 'm', 0, "Memory capacity in KB")
	optDebug := getopt.BoolLong("debug", 'd', "Drop into the interactive debugger")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var logFile io.Writer
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "comvm: cannot create log file:", err)
			os.Exit(1)
		}
		logFile = f
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debugFlag := false
	slog.SetDefault(slog.New(logger.NewHandler(logFile,
		&slog.HandlerOptions{Level: programLevel}, &debugFlag)))

	cfg := &config.Config{}
	if *optConfig != "" {
		loaded, err := config.Load(*optConfig)
		if err != nil {
			slog.Error("loading config", "path", *optConfig, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	capacityKB := mem.MinCapacity / 1024
	if cfg.MemoryKB > 0 {
		capacityKB = cfg.MemoryKB
	}
	if *optMemKB > 0 {
		capacityKB = *optMemKB
	}

	image, args, err := parseArgs(getopt.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "comvm:", err)
		getopt.Usage()
		os.Exit(-1)
	}

	sink := dev.NewStdoutSink(func(b byte) { os.Stdout.Write([]byte{b}) })
	mc := core.New(capacityKB*1024, sink)

	if err := mc.LoadFile(image, args); err != nil {
		slog.Error("load failed", "error", err)
		os.Exit(-1)
	}

	if *optTrace || cfg.Trace {
		mc.CPU.SetTrace(func(line string) { slog.Info("trace", "instr", line) })
	}
	if *optDebug {
		for _, addr := range cfg.Breaks {
			mc.CPU.SetBreak(addr)
		}
		reader.ConsoleReader(mc)
		os.Exit(0)
	}

	os.Exit(run(mc))
}

// parseArgs splits the host's positional arguments into an image path
// (defaulting to defaultImage) and the arguments passed through the PSP
// command-line area, rejecting anything that looks like a flag (spec §6).
func parseArgs(positional []string) (string, []string, error) {
	image := defaultImage
	var args []string

	for i, a := range positional {
		if strings.HasPrefix(a, "-") {
			return "", nil, fmt.Errorf("unrecognized option: %s", a)
		}
		if i == 0 {
			image = a
			continue
		}
		args = append(args, a)
	}
	return image, args, nil
}

// run free-runs mc to completion in a bounded number of quanta, mapping
// the CPU's tick result to a host exit code (spec §6.1, §4.9).
func run(mc *core.Machine) int {
	const quantum = 1000
	const maxQuanta = 10000

	for i := 0; i < maxQuanta; i++ {
		switch mc.Tick(quantum) {
		case cpu.TickDone:
			return 0
		case cpu.TickError:
			slog.Error("execution halted", "errors", mc.CPU.Errors(), "ip", mc.CPU.IP())
			return -1
		}
	}

	slog.Warn("quantum budget exhausted, program still running", "ip", mc.CPU.IP())
	return 2
}
