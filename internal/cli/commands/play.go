package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gpsreplay/gpsreplay/pkg/engine"
	"github.com/gpsreplay/gpsreplay/pkg/selection"
	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// PlayOptions holds options for the play command
type PlayOptions struct {
	From  string
	Until string
	Quiet bool
}

// NewPlayCommand creates the play command
func NewPlayCommand(g *Globals) *cobra.Command {
	opts := &PlayOptions{}

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Replay a track in real time",
		Long: `Replay a track in real time, printing each record as playback reaches it.

Playback follows the gaps between record timestamps, so a track recorded
at 10 Hz prints ten lines per second. The screen refreshes every
tick_interval. Interrupt (Ctrl-C) pauses and reports the position.

Positions accept a record index (0-based), a time of day on the
track's first date (00:10:00), or a full timestamp.

Example:
  gpsreplay play drive.csv
  gpsreplay play --from 00:10:00 --until 00:11:00 drive.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, g, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Start playback at this position")
	cmd.Flags().StringVar(&opts.Until, "until", "", "Stop playback once this position is reached")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Only print where playback stopped")

	return cmd
}

func runPlay(cmd *cobra.Command, g *Globals, path string, opts *PlayOptions) error {
	v, err := g.setup(cmd)
	if err != nil {
		return err
	}

	e := v.newEngine()
	e.Subscribe(func(ev engine.Event) {
		v.log.Debug().Str("event", ev.Kind.String()).Int("index", ev.Index).Msg(ev.Message)
	})

	if _, err := v.load(e, path); err != nil {
		return err
	}
	seq := e.Sequence()
	if seq.Empty() {
		return fmt.Errorf("%s: %w", path, engine.ErrEmptySequence)
	}

	until := seq.Last()
	if opts.From != "" {
		i, _, err := resolvePoint(seq, v.cfg.Location(), opts.From)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		if err := e.Seek(i); err != nil {
			return err
		}
	}
	if opts.Until != "" {
		i, _, err := resolvePoint(seq, v.cfg.Location(), opts.Until)
		if err != nil {
			return fmt.Errorf("--until: %w", err)
		}
		until = i
	}

	ctx, stop := signal.NotifyContext(v.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := newStatusLine(cmd.OutOrStdout(), seq.Len())
	return play(ctx, e, v.cfg.TickInterval, until, s, opts.Quiet)
}

// play drives e until it finishes, reaches until or ctx is cancelled.
func play(ctx context.Context, e *engine.Engine, interval time.Duration, until int, s *statusLine, quiet bool) error {
	if err := e.Play(); err != nil {
		return err
	}

	snap, _ := e.Snapshot()
	if !quiet {
		s.print(snap.Index, snap.Record)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.Pause()
			snap, _ := e.Snapshot()
			s.stopped("paused at", snap.Index, snap.Record)
			return nil

		case <-ticker.C:
			res := e.Tick()
			if res.Advanced && !quiet {
				// Records skipped by a coarse tick are not printed.
				s.print(res.Index, e.Sequence().At(res.Index))
			}

			switch {
			case until < e.Sequence().Last() && res.Index >= until:
				e.Pause()
				s.stopped("stopped at", res.Index, e.Sequence().At(res.Index))
				return nil
			case res.Finished:
				s.stopped("finished at", res.Index, e.Sequence().At(res.Index))
				return nil
			}
		}
	}
}

// statusLine renders one line per displayed record.
type statusLine struct {
	w     io.Writer
	total int

	position lipgloss.Style
	label    lipgloss.Style
	dim      lipgloss.Style
}

func newStatusLine(w io.Writer, total int) *statusLine {
	r := lipgloss.NewRenderer(w)
	return &statusLine{
		w:        w,
		total:    total,
		position: r.NewStyle().Foreground(lipgloss.Color("8")),
		label:    r.NewStyle().Bold(true),
		dim:      r.NewStyle().Faint(true),
	}
}

func (s *statusLine) print(i int, r track.Record) {
	fmt.Fprintf(s.w, "%s %s %.6f %.6f %6.1f km/h %5.1f° %s\n",
		s.position.Render(fmt.Sprintf("[%d/%d]", i+1, s.total)),
		s.label.Render(selection.Label(r)),
		r.Lat, r.Lon, r.Speed, r.Heading,
		s.dim.Render(fmt.Sprintf("sats=%d", r.Sats)))
}

func (s *statusLine) stopped(what string, i int, r track.Record) {
	fmt.Fprintf(s.w, "%s #%d (%s)\n", what, i, selection.Label(r))
}
