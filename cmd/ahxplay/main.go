// Command ahxplay plays an AHX module live through portaudio.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"
	flag "github.com/spf13/pflag"

	"github.com/chriskillpack/ahxplayer/ahx"
	"github.com/chriskillpack/ahxplayer/cmd/internal/config"
)

var (
	flagHz      = flag.IntP("hz", "r", 44100, "output sample rate")
	flagSubsong = flag.IntP("subsong", "s", 0, "subsong index to play")
	flagVolume  = flag.IntP("volume", "v", 256, "master volume, 0-256")
	flagStereo  = flag.IntP("stereo", "p", 0, "stereo separation percentage, 0-100 (0 = full hard panning)")
	flagLowPass = flag.Bool("lowpass", true, "enable the A1200-style low-pass filter")
	flagReverb  = flag.StringP("reverb", "b", "none", "reverb preset: none, light, medium, silly")
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

func main() {
	flag.Parse()
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "ahxplay"})

	if flag.NArg() != 1 {
		logger.Fatal("usage: ahxplay [flags] <file.ahx>")
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		logger.Fatal("read module", "err", err)
	}

	waves := ahx.NewWaveforms()
	mod, err := ahx.Load(data, waves)
	if err != nil {
		logger.Fatal("load module", "err", err)
	}

	player := ahx.New(mod, waves, *flagHz)
	player.SetMasterVolume(*flagVolume)
	player.SetStereoSeparation(*flagStereo)
	player.SetLowPassFilter(*flagLowPass)
	player.SetLoopLimit(0)

	reverb, err := config.ReverbFromFlag(*flagReverb, *flagHz)
	if err != nil {
		logger.Fatal("reverb", "err", err)
	}

	if err := player.Play(*flagSubsong); err != nil {
		logger.Fatal("play", "err", err)
	}

	if err := portaudio.Initialize(); err != nil {
		logger.Fatal("portaudio init", "err", err)
	}
	defer portaudio.Terminate()

	const bufFrames = 1024
	raw := make([]int16, bufFrames*2)

	streamCB := func(out []int16) {
		n := len(out) / 2
		if n > bufFrames {
			n = bufFrames
		}
		player.OutputSamples(raw[:n*2], n)
		reverb.InputSamples(raw[:n*2])
		got := reverb.GetAudio(out[:n*2])
		for i := got; i < n*2; i++ {
			out[i] = 0
		}
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, float64(*flagHz), portaudio.FramesPerBufferUnspecified, streamCB)
	if err != nil {
		logger.Fatal("open stream", "err", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		logger.Fatal("start stream", "err", err)
	}
	defer stream.Stop()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT)
	go func() {
		<-sigch
		player.Stop()
		stream.Stop()
		portaudio.Terminate()
		fmt.Print(showCursor)
		os.Exit(0)
	}()

	fmt.Print(hideCursor)
	fmt.Println(mod.Name)

	cyan := color.New(color.FgCyan).SprintfFunc()

	lastPos, lastRow := -1, -1
	for player.Playing() {
		pos, row := player.Position()
		if pos != lastPos || row != lastRow {
			fmt.Printf("\r%s", cyan("pos %3d  row %3d", pos, row))
			lastPos, lastRow = pos, row
		}
	}
	fmt.Println()

	fmt.Print(showCursor)
}
