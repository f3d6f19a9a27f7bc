// Command pathreplay re-runs every search stored in a replay file and
// reports searches whose result differs from the recorded one.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/klei1984/max-sub005/engine/network"
	"github.com/klei1984/max-sub005/engine/pathfind"
	"github.com/klei1984/max-sub005/engine/paths"
)

type divergence struct {
	rec  paths.SearchRecord
	got  []pathfind.Point
	none bool
}

func (d divergence) String() string {
	want := "no path"
	if d.rec.Steps != nil {
		want = fmt.Sprintf("%d steps", len(d.rec.Steps))
	}
	got := "no path"
	if !d.none {
		got = fmt.Sprintf("%d steps", len(d.got))
	}
	return fmt.Sprintf("request %s unit %d %v -> %v: recorded %s, replayed %s",
		d.rec.RequestID, d.rec.Unit, d.rec.Start, d.rec.Destination, want, got)
}

// replay re-runs one record, nil when it matches
func replay(rec paths.SearchRecord) *divergence {
	res := rec.Replay()
	switch {
	case res == nil && rec.Steps == nil:
		return nil
	case res != nil && rec.Steps != nil && slices.Equal(res.Steps, rec.Steps):
		return nil
	}
	d := &divergence{rec: rec, none: res == nil}
	if res != nil {
		d.got = res.Steps
	}
	return d
}

func writeSnapshot(dir string, d *divergence) error {
	m := pathfind.AccessMapFromRaw(d.rec.Width, d.rec.Height, d.rec.Access)
	f, err := os.Create(filepath.Join(dir, d.rec.RequestID.String()+".png"))
	if err != nil {
		return err
	}
	defer f.Close()
	return m.WriteSnapshot(f, d.rec.Start, d.got, 8)
}

func main() {
	jobs := flag.Int("j", runtime.NumCPU(), "searches replayed in parallel")
	pngDir := flag.String("png", "", "write an access map snapshot of every divergent search to this directory")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pathreplay [-j n] [-png dir] replay.mxpr")
		os.Exit(2)
	}

	rr, err := network.OpenReplay(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	recs, err := rr.ReadAll()
	rr.Close()
	if err != nil {
		log.Fatal(err)
	}

	results := make([]*divergence, len(recs))
	var g errgroup.Group
	g.SetLimit(max(*jobs, 1))
	for i, rec := range recs {
		i, rec := i, rec
		g.Go(func() error {
			results[i] = replay(rec)
			if results[i] != nil && *pngDir != "" {
				return writeSnapshot(*pngDir, results[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}

	diverged := 0
	for _, d := range results {
		if d != nil {
			diverged++
			log.Printf("[replay] %v", d)
		}
	}
	log.Printf("[replay] %d searches, %d diverged", len(recs), diverged)
	if diverged > 0 {
		os.Exit(1)
	}
}
