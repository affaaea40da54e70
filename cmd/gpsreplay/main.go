// gpsreplay - GPS telemetry replay and clipping tool
//
// gpsreplay loads delimited GPS logs, replays them against the wall clock,
// reports data problems and writes clips whose rows match the source byte
// for byte.
package main

import (
	"os"

	"github.com/gpsreplay/gpsreplay/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
