// Command ahxdump prints an AHX module's header and instrument metadata.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/chriskillpack/ahxplayer/ahx"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("ahxdump: ")

	if len(os.Args) <= 1 {
		log.Fatal("Missing song filename")
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	waves := ahx.NewWaveforms()
	mod, err := ahx.Load(data, waves)
	if err != nil {
		log.Fatal(err)
	}

	dump(mod)
}

func dump(mod *ahx.Module) {
	fmt.Printf("Name:          %q\n", mod.Name)
	fmt.Printf("Revision:      %d\n", mod.Revision)
	fmt.Printf("Length:        %d positions\n", mod.LenNr)
	fmt.Printf("Restart pos:   %d\n", mod.ResNr)
	fmt.Printf("Track length:  %d\n", mod.TrackLength)
	fmt.Printf("Highest track: %d\n", mod.HighestTrack)
	fmt.Printf("Subsongs:      %d\n", mod.Subsongs)
	fmt.Printf("CIA period:    %d\n", mod.SongCIAPeriod)
	fmt.Printf("Track 0 empty: %v\n", !mod.TrackZeroOK)
	fmt.Printf("Instruments:   %d\n\n", len(mod.Instruments)-1)

	for i, ins := range mod.Instruments {
		if i == 0 || ins == nil {
			continue
		}
		fmt.Printf("  #%02d vol=%-3d adsr=%d/%d/%d/%d square=[%d,%d]@%d filter=[%d,%d]@%d perf=%d steps\n",
			i, ins.Volume,
			ins.AFrames, ins.DFrames, ins.SFrames, ins.RFrames,
			ins.SquareLowerLimit, ins.SquareUpperLimit, ins.SquareSpeed,
			ins.FilterLowerLimit, ins.FilterUpperLimit, ins.FilterSpeedWavelength>>3,
			ins.PerfLength,
		)
	}
}
