// Command ahxwav renders an AHX module to a WAVE file.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"github.com/chriskillpack/ahxplayer/ahx"
	"github.com/chriskillpack/ahxplayer/wav"
)

const outputHz = 44100

func main() {
	subsong := flag.IntP("subsong", "s", 0, "subsong index to render")
	seconds := flag.IntP("seconds", "t", 180, "max seconds to render")
	loops := flag.Uint8P("loops", "l", 1, "song loops allowed before stopping (0 = stop at the first loop)")
	wavOut := flag.StringP("out", "o", "", "output WAVE file (required)")
	flag.Parse()

	jobID := uuid.New()
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "ahxwav"})
	logger = logger.With("job", jobID.String())

	if flag.NArg() != 1 {
		logger.Fatal("usage: ahxwav -out render.wav <file.ahx>")
	}
	if *wavOut == "" {
		logger.Fatal("missing required -out flag")
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
	logger.Info("loaded module", "name", mod.Name, "subsongs", mod.Subsongs)

	player := ahx.New(mod, waves, outputHz)
	player.SetLoopLimit(*loops)
	if err := player.Play(*subsong); err != nil {
		logger.Fatal("play", "err", err)
	}

	wavF, err := os.Create(*wavOut)
	if err != nil {
		logger.Fatal("create output", "err", err)
	}
	defer wavF.Close()

	wavW, err := wav.NewWriter(wavF, outputHz)
	if err != nil {
		logger.Fatal("new wav writer", "err", err)
	}

	const chunkFrames = 2048
	interleaved := make([]int16, chunkFrames*2)
	left := make([]int16, chunkFrames)
	right := make([]int16, chunkFrames)

	maxFrames := *seconds * outputHz
	framesDone := 0
	lastPos := -1

	for player.Playing() && framesDone < maxFrames {
		n := chunkFrames
		if remaining := maxFrames - framesDone; remaining < n {
			n = remaining
		}
		player.OutputSamples(interleaved, n)

		for i := 0; i < n; i++ {
			left[i] = interleaved[2*i]
			right[i] = interleaved[2*i+1]
		}
		if err := wavW.WriteFrame([][]int16{left[:n], right[:n]}); err != nil {
			logger.Fatal("write frame", "err", err)
		}

		framesDone += n
		if pos, _ := player.Position(); pos != lastPos {
			logger.Info("position", "pos", pos)
			lastPos = pos
		}
	}
	player.Stop()

	if _, err := wavW.Finish(); err != nil {
		logger.Fatal("finish wav", "err", err)
	}
	logger.Info("done", "frames", framesDone)
}
