// Package engine is the single owner of a loaded track, its playback cursor
// and its selection marks. A display layer drives it through explicit
// operations and renders Snapshot values; it never touches the sequence or
// cursor directly.
//
// An Engine is not safe for concurrent use. Callers serialize access, usually
// by driving it from one event loop.
package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/gpsreplay/gpsreplay/pkg/export"
	"github.com/gpsreplay/gpsreplay/pkg/ingest"
	"github.com/gpsreplay/gpsreplay/pkg/player"
	"github.com/gpsreplay/gpsreplay/pkg/selection"
	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// DefaultSourceName names in-memory sources loaded without a name.
const DefaultSourceName = "track"

// LoadResult summarizes a load.
type LoadResult struct {
	Source  string
	Records int
	Stats   ingest.Stats
}

// Snapshot is a copy of the display state.
type Snapshot struct {
	Index   int
	Record  track.Record
	Total   int
	Playing bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock sets the playback clock.
func WithClock(c player.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithDelimiter sets the field delimiter for both ingest and export.
func WithDelimiter(d string) Option {
	return func(e *Engine) {
		if d != "" {
			e.delimiter = d
		}
	}
}

// WithLocation sets the zone for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// WithColumns overrides the logical column names.
func WithColumns(c ingest.Columns) Option {
	return func(e *Engine) { e.columns = &c }
}

// WithOutputDir sets the directory for exports given no explicit path.
func WithOutputDir(dir string) Option {
	return func(e *Engine) { e.outputDir = dir }
}

// Engine holds one loaded track.
type Engine struct {
	log       zerolog.Logger
	clock     player.Clock
	delimiter string
	loc       *time.Location
	columns   *ingest.Columns
	outputDir string

	source string
	loaded bool
	seq    *track.Sequence
	stats  ingest.Stats
	player *player.Player
	marks  selection.Marks

	subscribers []func(Event)
}

// New creates an Engine with nothing loaded.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:       zerolog.Nop(),
		delimiter: ingest.DefaultDelimiter,
		seq:       &track.Sequence{},
	}
	for _, opt := range opts {
		opt(e)
	}

	var popts []player.Option
	if e.clock != nil {
		popts = append(popts, player.WithClock(e.clock))
	}
	e.player = player.New(e.seq, popts...)
	return e
}

func (e *Engine) ingestOptions() []ingest.Option {
	opts := []ingest.Option{
		ingest.WithDelimiter(e.delimiter),
		ingest.WithLocation(e.loc),
	}
	if e.columns != nil {
		opts = append(opts, ingest.WithColumns(*e.columns))
	}
	return opts
}

// LoadFile reads the file at path and replaces the current track.
//
// A read failure returns ErrIO and leaves the previous track in place. A file
// that parses to zero records is still installed (its header survives for
// export) and ErrNoUsableData is returned.
func (e *Engine) LoadFile(path string) (LoadResult, error) {
	seq, stats, err := ingest.ParseFile(path, e.ingestOptions()...)
	if err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("load failed")
		return LoadResult{Source: path}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return e.install(path, seq, stats)
}

// Load reads a track from r. name is used for log messages and default
// export names.
func (e *Engine) Load(r io.Reader, name string) (LoadResult, error) {
	if name == "" {
		name = DefaultSourceName
	}
	seq, stats, err := ingest.Parse(r, e.ingestOptions()...)
	if err != nil {
		e.log.Error().Err(err).Str("source", name).Msg("load failed")
		return LoadResult{Source: name}, fmt.Errorf("%w: reading %s: %w", ErrIO, name, err)
	}
	return e.install(name, seq, stats)
}

func (e *Engine) install(source string, seq *track.Sequence, stats *ingest.Stats) (LoadResult, error) {
	e.source = source
	e.seq = seq
	e.stats = *stats
	e.loaded = true
	e.player.Reset(seq)
	e.marks.Clear()

	res := LoadResult{Source: source, Records: seq.Len(), Stats: *stats}

	ev := e.log.Info().
		Str("source", source).
		Int("records", stats.Accepted).
		Int("dropped", stats.Dropped()).
		Int("recovered", stats.Recovered)
	if len(stats.MissingColumns) > 0 {
		ev = ev.Strs("missing_columns", stats.MissingColumns)
	}
	ev.Msg("track loaded")

	e.emit(Event{Kind: EventLoaded, Rows: seq.Len(), Path: source})

	if seq.Empty() {
		return res, fmt.Errorf("%s: %w", source, ErrNoUsableData)
	}
	return res, nil
}

// Loaded reports whether a file has been loaded.
func (e *Engine) Loaded() bool { return e.loaded }

// Source returns the path or name of the loaded track.
func (e *Engine) Source() string { return e.source }

// Sequence returns the loaded track. Callers must not modify it.
func (e *Engine) Sequence() *track.Sequence { return e.seq }

// Stats returns the ingest statistics of the last load.
func (e *Engine) Stats() ingest.Stats { return e.stats }

// Marks returns a copy of the selection marks.
func (e *Engine) Marks() selection.Marks { return e.marks }

// Playing reports whether playback is running.
func (e *Engine) Playing() bool { return e.player.Playing() }

// Snapshot returns the current display state. ok is false when there is no
// record to show.
func (e *Engine) Snapshot() (Snapshot, bool) {
	if e.seq.Empty() {
		return Snapshot{}, false
	}
	i := e.player.Index()
	return Snapshot{
		Index:   i,
		Record:  e.seq.At(i),
		Total:   e.seq.Len(),
		Playing: e.player.Playing(),
	}, true
}

// Play starts playback from the cursor, rewinding first if the cursor is on
// the last record.
func (e *Engine) Play() error {
	if !e.loaded {
		return ErrNotLoaded
	}
	before := e.player.Index()
	if err := e.player.Start(); err != nil {
		return err
	}
	if i := e.player.Index(); i != before {
		e.emit(Event{Kind: EventCursorMoved, Index: i})
	}
	e.log.Debug().Int("index", e.player.Index()).Msg("playback started")
	e.emit(Event{Kind: EventPlaybackStarted, Index: e.player.Index()})
	return nil
}

// Pause stops playback and keeps the cursor.
func (e *Engine) Pause() {
	if !e.player.Playing() {
		return
	}
	e.player.Stop()
	e.log.Debug().Int("index", e.player.Index()).Msg("playback paused")
	e.emit(Event{Kind: EventPlaybackStopped, Index: e.player.Index()})
}

// Tick advances playback. Call it periodically while playing, for example
// every player.DefaultTickInterval. It never blocks.
func (e *Engine) Tick() player.TickResult {
	res := e.player.Tick()
	if res.Advanced {
		e.emit(Event{Kind: EventCursorMoved, Index: res.Index})
	}
	if res.Finished {
		e.log.Debug().Int("index", res.Index).Msg("playback finished")
		e.emit(Event{Kind: EventPlaybackFinished, Index: res.Index})
	}
	return res
}

// Seek pauses playback and moves the cursor to i, clamped to the track.
func (e *Engine) Seek(i int) error {
	if !e.loaded {
		return ErrNotLoaded
	}
	e.Pause()
	before := e.player.Index()
	idx, err := e.player.Seek(i)
	if err != nil {
		return err
	}
	if idx != before {
		e.emit(Event{Kind: EventCursorMoved, Index: idx})
	}
	return nil
}

// SeekTime seeks to the first record at or after t.
func (e *Engine) SeekTime(t time.Time) error {
	if !e.loaded {
		return ErrNotLoaded
	}
	if e.seq.Empty() {
		return ErrEmptySequence
	}
	i := e.seq.IndexAtOrAfter(t)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSeek, t.Format(time.RFC3339Nano))
	}
	return e.Seek(i)
}

// StepPrev pauses playback and moves back one record.
func (e *Engine) StepPrev() { e.step(e.player.StepPrev) }

// StepNext pauses playback and moves forward one record.
func (e *Engine) StepNext() { e.step(e.player.StepNext) }

func (e *Engine) step(move func() int) {
	if !e.loaded {
		return
	}
	e.Pause()
	before := e.player.Index()
	if i := move(); i != before {
		e.emit(Event{Kind: EventCursorMoved, Index: i})
	}
}

// MarkIn sets the in mark at the cursor.
func (e *Engine) MarkIn() error {
	return e.mark(e.marks.SetIn)
}

// MarkOut sets the out mark at the cursor.
func (e *Engine) MarkOut() error {
	return e.mark(e.marks.SetOut)
}

func (e *Engine) mark(set func(int)) error {
	if !e.loaded {
		return ErrNotLoaded
	}
	if e.seq.Empty() {
		return ErrEmptySequence
	}
	set(e.player.Index())
	e.emit(Event{Kind: EventMarksChanged, Index: e.player.Index(), Message: e.SelectionSummary().String()})
	return nil
}

// ClearMarks unsets both marks.
func (e *Engine) ClearMarks() {
	e.marks.Clear()
	e.emit(Event{Kind: EventMarksChanged, Index: e.player.Index(), Message: selection.NoSelection})
}

// SelectionSummary describes the current marks.
func (e *Engine) SelectionSummary() selection.Summary {
	return selection.Summarize(e.marks, e.seq)
}

// ExportSelection writes the records between the marks, inclusive.
// An empty path writes next to the source with the "_clip" suffix.
func (e *Engine) ExportSelection(path string) (export.Result, error) {
	if !e.loaded {
		return export.Result{}, ErrNotLoaded
	}
	rows, err := export.Selection(e.seq, e.marks)
	if err != nil {
		return export.Result{}, err
	}
	return e.write(export.OpClip, path, rows)
}

// ExportTrim writes the records at or before the cursor record's time when
// keepFront is set, otherwise those at or after it.
func (e *Engine) ExportTrim(keepFront bool, path string) (export.Result, error) {
	if !e.loaded {
		return export.Result{}, ErrNotLoaded
	}
	op := export.OpTail
	if keepFront {
		op = export.OpHead
	}
	return e.write(op, path, export.Trim(e.seq, e.player.Index(), keepFront))
}

// ExportCut writes the records at or after from.
func (e *Engine) ExportCut(from time.Time, path string) (export.Result, error) {
	if !e.loaded {
		return export.Result{}, ErrNotLoaded
	}
	return e.write(export.OpCut, path, export.Cut(e.seq, from))
}

func (e *Engine) write(op export.Op, path string, rows []track.Record) (export.Result, error) {
	if path == "" {
		path = export.OutputPath(e.source, op, e.outputDir)
	}
	res := export.Result{Op: op, Path: path}

	n, err := export.WriteFile(path, e.seq.Header, rows, e.delimiter)
	if err != nil {
		e.log.Error().Err(err).Str("op", string(op)).Str("path", path).Msg("export failed")
		return res, fmt.Errorf("%w: %w", ErrIO, err)
	}
	res.Rows = n
	if n > 0 {
		res.First, res.Last = rows[0].RawTime, rows[n-1].RawTime
	}

	e.log.Info().Str("op", string(op)).Str("path", path).Int("rows", n).Msg("exported")
	e.emit(Event{Kind: EventExported, Index: e.player.Index(), Rows: n, Path: path, Message: describe(rows)})
	return res, nil
}

// describe renders the raw time range of rows for confirmation messages.
func describe(rows []track.Record) string {
	if len(rows) == 0 {
		return "header only"
	}
	return fmt.Sprintf("%s ~ %s, %d rows", rows[0].RawTime, rows[len(rows)-1].RawTime, len(rows))
}
