package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

const (
	quietKey      = "quiet"
	iterationsKey = "iterations"
	widthKey      = "width"
	depthKey      = "depth"
)

func main() {
	cmd := &cli.Command{
		Name:  "observe",
		Usage: "Replay writes against an observed store and benchmark propagation",
		Commands: []*cli.Command{
			{
				Name:      "replay",
				Usage:     "Replay a YAML scenario and print every watcher recompute",
				ArgsUsage: "SCENARIO.yaml",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  quietKey,
						Usage: "Only print the final store",
					},
				},
				Action: replay,
			},
			{
				Name:  "bench",
				Usage: "Measure write propagation through chains of watchers",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  iterationsKey,
						Usage: "Writes per benchmark",
						Value: 100,
					},
					&cli.UintFlag{
						Name:  widthKey,
						Usage: "Largest number of parallel watcher chains",
						Value: 1_000,
					},
					&cli.UintFlag{
						Name:  depthKey,
						Usage: "Largest chain length",
						Value: 100,
					},
				},
				Action: bench,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
