package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/delaneyj/reactivestore/scenario"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

var errMissingScenario = errors.New("missing scenario file")

func replay(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errMissingScenario
	}

	start := time.Now()
	log.Printf("Replaying %s", path)
	defer func() {
		log.Printf("Replay finished in %v", time.Since(start))
	}()

	doc, err := scenario.LoadFile(path)
	if err != nil {
		return err
	}

	res, replayErr := scenario.Replay(doc)
	if res == nil {
		return replayErr
	}

	if !cmd.Bool(quietKey) {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"step", "op", "watcher", "value", "old"})
		table.SetAutoWrapText(false)
		for _, ev := range res.Events {
			op := "-"
			if ev.Step >= 0 {
				op = doc.Steps[ev.Step].String()
			}
			table.Append([]string{
				strconv.Itoa(ev.Step),
				op,
				ev.Watcher,
				formatValue(ev.Value),
				formatValue(ev.OldValue),
			})
		}
		table.Render()
	}

	for _, err := range res.Errors {
		log.Printf("watcher error: %v", err)
	}
	fmt.Fprintln(os.Stdout, formatValue(res.Final()))

	return replayErr
}
