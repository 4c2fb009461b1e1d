package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/dynmem/internal/buffer"
	"github.com/born-ml/dynmem/internal/config"
	"github.com/born-ml/dynmem/internal/correlate"
	"github.com/born-ml/dynmem/internal/mat"
	"github.com/born-ml/dynmem/internal/view"
)

type probeReport struct {
	mode    buffer.Mode
	size    int
	frames  int
	tracker buffer.TrackerStats
	pool    *buffer.PoolStats
	peakRow int
	peakCol int
	leaks   error
}

func loadConfig(path, mode string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if mode != "" {
		cfg.Mode = mode
	}
	cfg.Track = true
	return cfg, cfg.Validate()
}

// runProbe allocates a template view once, then per frame allocates a search
// view, writes a shifted pattern through its host memory, verifies it through
// the matrix overlay, correlates it against the template and releases it.
func runProbe(cfg config.Config, size, frames int) (*probeReport, error) {
	if size <= 0 || frames <= 0 {
		return nil, fmt.Errorf("size and frames must be positive, got %d and %d", size, frames)
	}
	stack, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	opts := stack.Options()

	tmpl := view.New(size, size, mat.F32C1, opts...)
	resp := view.New(size, size, mat.F32C1, opts...)
	tmpl.Mat().Set(1, size/2, size/2)

	report := &probeReport{mode: stack.Mode, size: size, frames: frames}
	for f := 0; f < frames; f++ {
		if err := probeFrame(tmpl, resp, f, report, opts); err != nil {
			return nil, abort(stack, fmt.Errorf("frame %d: %w", f, err), tmpl, resp)
		}
	}

	if err := tmpl.Release(); err != nil {
		return nil, err
	}
	if err := resp.Release(); err != nil {
		return nil, err
	}

	report.tracker = stack.Tracker.Stats()
	report.leaks = stack.Tracker.Leaks()
	if stack.Pool != nil {
		s := stack.Pool.Stats()
		report.pool = &s
	}
	if err := stack.Close(); err != nil {
		return nil, err
	}
	return report, nil
}

// abort releases views and the stack after a failed frame. The returned error
// wraps cause and any cleanup failures.
func abort(stack *config.Stack, cause error, views ...*view.View) error {
	errs := []error{cause}
	for _, v := range views {
		errs = append(errs, v.Release())
	}
	errs = append(errs, stack.Close())
	return errors.Join(errs...)
}

func probeFrame(tmpl, resp *view.View, frame int, report *probeReport, opts []buffer.Option) (err error) {
	size := tmpl.Shape()[0]
	search := view.New(size, size, mat.F32C1, opts...)
	defer func() {
		if rerr := search.Release(); err == nil {
			err = rerr
		}
	}()

	// Target moves one pixel per frame.
	row, col := (size/2+frame)%size, (size/2+2*frame)%size
	host := search.Host()
	host[row*size+col] = 1

	if got := search.Mat().At(row, col); got != 1 {
		return fmt.Errorf("matrix read-back at (%d, %d) = %v, want 1", row, col, got)
	}

	if err := correlate.Correlate(resp, search, tmpl); err != nil {
		return err
	}
	r, c, _, err := correlate.Peak(resp)
	if err != nil {
		return err
	}
	report.peakRow, report.peakCol = r, c

	logrus.WithFields(logrus.Fields{"frame": frame, "row": r, "col": c}).Debug("frame processed")
	return nil
}

func (r *probeReport) rows() [][]string {
	rows := [][]string{
		{"mode", r.mode.String()},
		{"view", fmt.Sprintf("%dx%d float32C1", r.size, r.size)},
		{"frames", strconv.Itoa(r.frames)},
		{"allocations", strconv.Itoa(r.tracker.Allocations)},
		{"frees", strconv.Itoa(r.tracker.Frees)},
		{"peak bytes", strconv.Itoa(r.tracker.PeakBytes)},
		{"last peak", fmt.Sprintf("(%d, %d)", r.peakRow, r.peakCol)},
	}
	if r.pool != nil {
		rows = append(rows,
			[]string{"pool hits", strconv.FormatUint(r.pool.Hits, 10)},
			[]string{"pool misses", strconv.FormatUint(r.pool.Misses, 10)},
		)
	}
	leaks := "none"
	if r.leaks != nil {
		leaks = r.leaks.Error()
	}
	return append(rows, []string{"leaks", leaks})
}

func (r *probeReport) printTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)
	table.AppendBulk(r.rows())
	table.Render()
}

func (r *probeReport) printPlain(w io.Writer) {
	for _, row := range r.rows() {
		fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
}
