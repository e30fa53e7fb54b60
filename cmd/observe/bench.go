package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/delaneyj/reactivestore/observe"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

func bench(ctx context.Context, cmd *cli.Command) error {
	iters := int(cmd.Uint(iterationsKey))
	ww := upTo(int(cmd.Uint(widthKey)))
	hh := upTo(int(cmd.Uint(depthKey)))

	log.Printf("warming up")
	if _, err := benchmarkPropagate(1, 1, iters); err != nil {
		return err
	}

	propagate := table.NewWriter()
	propagate.SetTitle("Field writes")
	propagate.SetOutputMirror(os.Stdout)
	propagate.AppendHeader(table.Row{"benchmark", "recomputes", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			res, err := benchmarkPropagate(w, h, iters)
			if err != nil {
				return err
			}
			propagate.AppendRow(res.row(fmt.Sprintf("propagate: %d * %d", w, h)))
		}
	}
	propagate.Render()

	mutate := table.NewWriter()
	mutate.SetTitle("Sequence mutators")
	mutate.SetOutputMirror(os.Stdout)
	mutate.AppendHeader(table.Row{"benchmark", "recomputes", "avg", "min", "p75", "p99", "max"})
	for _, w := range ww {
		res, err := benchmarkPush(w, iters)
		if err != nil {
			return err
		}
		mutate.AppendRow(res.row(fmt.Sprintf("push: %d watchers", w)))
	}
	mutate.Render()

	return nil
}

type benchResult struct {
	calc       *tachymeter.Metrics
	recomputes int64
}

func (r benchResult) row(name string) table.Row {
	return table.Row{
		name,
		humanize.Comma(r.recomputes),
		r.calc.Time.Avg,
		r.calc.Time.Min,
		r.calc.Time.P75,
		r.calc.Time.P99,
		r.calc.Time.Max,
	}
}

// benchmarkPropagate builds w chains of h watchers. Watcher j of a chain
// reads field j and writes field j+1, so one write to the source field runs
// w*h recomputes before it returns.
func benchmarkPropagate(w, h, iters int) (benchResult, error) {
	sys := observe.CreateSystem(func(from observe.Subscriber, err error) {
		log.Panic(err)
	})

	data := map[string]any{"src": 0}
	for i := 0; i < w; i++ {
		for j := 0; j < h; j++ {
			data[chainKey(i, j)] = 0
		}
	}
	store := sys.Observe(data).(*observe.Record)

	var recomputes int64
	for i := 0; i < w; i++ {
		prev := "src"
		for j := 0; j < h; j++ {
			next := chainKey(i, j)
			if _, err := sys.Watch(store, prev, func(value, oldValue any) error {
				recomputes++
				store.Set(next, value.(int)+1)
				return nil
			}); err != nil {
				return benchResult{}, err
			}
			prev = next
		}
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		store.Set("src", store.Get("src").(int)+1)
		tach.AddTime(time.Since(start))
	}

	return benchResult{calc: tach.Calc(), recomputes: recomputes}, nil
}

// benchmarkPush measures one Push on a list watched by w watchers.
func benchmarkPush(w, iters int) (benchResult, error) {
	sys := observe.CreateSystem(func(from observe.Subscriber, err error) {
		log.Panic(err)
	})
	store := sys.Observe(map[string]any{"list": []any{}}).(*observe.Record)

	var recomputes int64
	for i := 0; i < w; i++ {
		if _, err := sys.Watch(store, "list", func(value, oldValue any) error {
			recomputes++
			return nil
		}); err != nil {
			return benchResult{}, err
		}
	}

	list := store.Get("list").(*observe.Sequence)
	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		list.Push(map[string]any{"i": i})
		tach.AddTime(time.Since(start))
	}

	return benchResult{calc: tach.Calc(), recomputes: recomputes}, nil
}

func chainKey(i, j int) string {
	return "c" + strconv.Itoa(i) + "_" + strconv.Itoa(j)
}

// upTo returns 1, 10, 100, ... while not exceeding limit.
func upTo(limit int) []int {
	out := []int{}
	for n := 1; n <= limit; n *= 10 {
		out = append(out, n)
	}
	if len(out) == 0 {
		out = append(out, 1)
	}
	return out
}
