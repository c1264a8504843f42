// This file is part of Emulite.
//
// Emulite is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Emulite is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Emulite.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/emulite/emulite/config"
	"github.com/emulite/emulite/debugger"
	"github.com/emulite/emulite/digest"
	"github.com/emulite/emulite/emulation"
	"github.com/emulite/emulite/hardware/peripherals/video"
	"github.com/emulite/emulite/hardware/platform"
	"github.com/emulite/emulite/logger"
	"github.com/emulite/emulite/modalflag"
	"github.com/emulite/emulite/performance"
	"github.com/emulite/emulite/screenshot"
	"github.com/emulite/emulite/statsview"
	"github.com/emulite/emulite/wavwriter"
)

func main() {
	os.Exit(launch(os.Args[1:], os.Stdout))
}

// launch parses the command line and runs the selected mode. Returns the
// exit status of the program.
func launch(args []string, output io.Writer) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.AddSubModes("RUN", "PLATFORMS", "PERFORMANCE", "TRACE")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0
	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return 10
	}

	switch md.Mode() {
	case "RUN":
		err = run(md, output)
	case "PLATFORMS":
		err = platforms(md, output)
	case "PERFORMANCE":
		err = perform(md, output)
	case "TRACE":
		err = trace(md, output)
	}

	if err != nil {
		fmt.Fprintf(output, "* error in %s mode: %s\n", md, err)
		return 20
	}

	return 0
}

// loadImage reads the image named by the single remaining argument. If the
// platform is not specified it is chosen from the file extension.
func loadImage(md *modalflag.Modes, platformID string) (string, []uint8, error) {
	switch len(md.RemainingArgs()) {
	case 0:
		return "", nil, fmt.Errorf("image required for %s mode", md)
	case 1:
	default:
		return "", nil, fmt.Errorf("too many arguments for %s mode", md)
	}

	filename := md.GetArg(0)
	rom, err := os.ReadFile(filename)
	if err != nil {
		return "", nil, err
	}

	if platformID != "" {
		return platformID, rom, nil
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	var candidates []string
	for _, id := range platform.IDs() {
		inf, _ := platform.Describe(id)
		for _, f := range inf.Formats {
			if f == ext {
				candidates = append(candidates, id)
				break // for loop
			}
		}
	}

	switch len(candidates) {
	case 0:
		return "", nil, fmt.Errorf("cannot choose a platform for %s files, use -platform", ext)
	case 1:
		return candidates[0], rom, nil
	}
	return "", nil, fmt.Errorf("%s files are used by %s, use -platform", ext, strings.Join(candidates, ", "))
}

func newConfig(prefs string) (*config.Config, error) {
	cfg := config.NewConfig()
	if prefs != "" {
		if err := cfg.ApplyCommandLine(prefs); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func setEcho(log bool, output io.Writer) {
	if log {
		logger.SetEcho(output)
	} else {
		logger.SetEcho(nil)
	}
}

// outputs consumes the presentation channels of the emulator until they are
// closed by Stop().
type outputs struct {
	wav       *wavwriter.WavWriter
	dig       *digest.Video
	lastFrame video.Frame
	frames    int
	wg        sync.WaitGroup
}

func (o *outputs) consume(emu *emulation.Emulator) {
	o.wg.Add(2)
	go func() {
		defer o.wg.Done()
		for f := range emu.Frames() {
			o.lastFrame = f
			o.frames++
			if o.dig != nil {
				o.dig.NewFrame(f)
			}
		}
	}()
	go func() {
		defer o.wg.Done()
		for b := range emu.Audio() {
			if o.wav != nil {
				o.wav.NewBuffer(b)
			}
		}
	}()
}

func (o *outputs) wait() {
	o.wg.Wait()
}

func run(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	platformID := md.AddString("platform", "", "platform to emulate (see PLATFORMS mode)")
	frames := md.AddInt("frames", 0, "number of frames to run. zero runs until interrupted")
	wav := md.AddString("wav", "", "record audio to wav file")
	bmp := md.AddString("bmp", "", "save the last frame to a bmp file")
	saveState := md.AddString("state", "", "save the emulator state to file on exit")
	restore := md.AddString("restore", "", "restore emulator state from file before running")
	prefs := md.AddString("prefs", "", "preferences as key::value pairs separated by semicolons")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	dig := md.AddBool("digest", false, "print a digest of the video output")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	setEcho(*log, output)

	if *stats {
		if !statsview.Available() {
			return fmt.Errorf("stats server not available in this build")
		}
		statsview.Launch(output)
	}

	id, rom, err := loadImage(md, *platformID)
	if err != nil {
		return err
	}

	cfg, err := newConfig(*prefs)
	if err != nil {
		return err
	}

	emu, err := emulation.NewEmulator(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = emu.Stop()
	}()

	if err := emu.Load(id, rom); err != nil {
		return err
	}

	if *restore != "" {
		f, err := os.Open(*restore)
		if err != nil {
			return err
		}
		err = emu.LoadState(f)
		_ = f.Close()
		if err != nil {
			return err
		}
	}

	out := &outputs{}
	if *wav != "" {
		out.wav, err = wavwriter.New(*wav)
		if err != nil {
			return err
		}
	}
	if *dig {
		out.dig = digest.NewVideo()
	}
	out.consume(emu)

	if *frames > 0 {
		for i := 0; i < *frames; i++ {
			if err := emu.RunFrame(); err != nil {
				return err
			}
		}
	} else {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		if err := emu.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		fmt.Fprint(output, "\r")
	}

	if *saveState != "" {
		f, err := os.Create(*saveState)
		if err != nil {
			return err
		}
		err = emu.SaveState(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}

	c := emu.Counters()
	if err := emu.Stop(); err != nil {
		return err
	}
	out.wait()

	fmt.Fprintf(output, "%d frames, %d instructions, %d cycles\n", c.Frames, c.Instructions, c.Cycles)
	if df, da := emu.Dropped(); df > 0 || da > 0 {
		fmt.Fprintf(output, "dropped %d frames and %d audio buffers\n", df, da)
	}

	if out.wav != nil {
		if err := out.wav.EndMixing(); err != nil {
			return err
		}
	}

	if *bmp != "" {
		if out.frames == 0 {
			return fmt.Errorf("no frame to save to %s", *bmp)
		}
		if err := screenshot.Save(*bmp, out.lastFrame); err != nil {
			return err
		}
	}

	if out.dig != nil {
		fmt.Fprintf(output, "%s\n", out.dig.Hash())
	}

	return nil
}

func platforms(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()
	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	for _, id := range platform.IDs() {
		inf, err := platform.Describe(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(output, inf.String())
	}
	return nil
}

func perform(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	platformID := md.AddString("platform", "", "platform to emulate (see PLATFORMS mode)")
	duration := md.AddDuration("duration", 5*time.Second, "run duration")
	profile := md.AddString("profile", "none", "create profile for emulator: CPU, MEM, TRACE, ALL (comma separated)")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	setEcho(*log, output)

	prf, err := performance.ParseProfileString(*profile)
	if err != nil {
		return err
	}

	id, rom, err := loadImage(md, *platformID)
	if err != nil {
		return err
	}

	return performance.Check(output, prf, id, rom, *duration)
}

// parseAddress accepts decimal, hexadecimal with a 0x prefix or hexadecimal
// with a $ prefix.
func parseAddress(s string) (uint32, error) {
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address (%s)", s)
	}
	return uint32(v), nil
}

func trace(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	platformID := md.AddString("platform", "", "platform to emulate (see PLATFORMS mode)")
	frames := md.AddInt("frames", 60, "maximum number of frames to run")
	brk := md.AddString("break", "", "address of breakpoint")
	cond := md.AddString("cond", "", "breakpoint condition (Lua expression)")
	watch := md.AddString("watch", "", "address of write watchpoint")
	entries := md.AddInt("entries", 100, "number of entries in the trace")
	memviz := md.AddString("memviz", "", "write debugger structures to graphviz file")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	setEcho(*log, output)

	id, rom, err := loadImage(md, *platformID)
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	if err := cfg.Debug.Enabled.Set(true); err != nil {
		return err
	}
	if err := cfg.Debug.TraceEntries.Set(*entries); err != nil {
		return err
	}

	emu, err := emulation.NewEmulator(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = emu.Stop()
	}()

	if err := emu.Load(id, rom); err != nil {
		return err
	}

	dbg := debugger.New(emu)
	defer dbg.Close()
	if err := dbg.Attach(); err != nil {
		return err
	}

	if *brk != "" {
		a, err := parseAddress(*brk)
		if err != nil {
			return err
		}
		if _, err := dbg.AddBreakpoint(a, *cond); err != nil {
			return err
		}
	}

	if *watch != "" {
		a, err := parseAddress(*watch)
		if err != nil {
			return err
		}
		if _, err := dbg.AddWatchpoint(a, 1, debugger.WatchWrite); err != nil {
			return err
		}
	}

	for i := 0; i < *frames && dbg.State() == debugger.AttachedRunning; i++ {
		if err := emu.RunFrame(); err != nil {
			break // for loop
		}
	}

	if dbg.State() == debugger.AttachedRunning {
		if err := dbg.Pause(); err != nil {
			return err
		}
	}

	if err := dbg.ExportTrace(output); err != nil {
		return err
	}

	select {
	case ev := <-dbg.Events():
		fmt.Fprintf(output, "halted by %s\n", ev)
	default:
		fmt.Fprintf(output, "not halted after %d frames\n", *frames)
	}

	fmt.Fprintf(output, "%d instructions, %d cycles\n", dbg.Instructions(), dbg.CyclesCounted())

	if *memviz != "" {
		f, err := os.Create(*memviz)
		if err != nil {
			return err
		}
		err = dbg.DumpMemviz(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}

	return nil
}
