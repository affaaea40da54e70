// Package player replays a track.Sequence against a wall clock.
//
// A Player is either stopped or playing. While playing, each Tick maps
// elapsed wall time onto the data timeline and moves the cursor forward to
// the first record at or after that point. The Player never starts a
// goroutine: the caller drives Tick at whatever cadence suits its display.
package player

import (
	"errors"
	"time"

	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// DefaultTickInterval is roughly 30 Hz. Only smoothness depends on it.
const DefaultTickInterval = 33 * time.Millisecond

var (
	// ErrEmptySequence is returned for operations that need at least one record.
	ErrEmptySequence = errors.New("sequence has no records")

	// ErrPlaying is returned by Seek while playback is running.
	ErrPlaying = errors.New("cannot seek while playing")
)

// State is the playback state.
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// TickResult reports what a single Tick did.
type TickResult struct {
	// Index is the cursor after the tick.
	Index int

	// Advanced is true when the cursor moved.
	Advanced bool

	// Finished is true on the one tick that ran past the last record.
	Finished bool
}

// Option configures a Player.
type Option func(*Player)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(p *Player) {
		if c != nil {
			p.clock = c
		}
	}
}

// Player owns the cursor over one sequence.
// It is not safe for concurrent use.
type Player struct {
	seq   *track.Sequence
	clock Clock

	index int
	state State

	anchorWall time.Time
	anchorData time.Time
}

// New creates a stopped Player positioned at index 0 of seq.
func New(seq *track.Sequence, opts ...Option) *Player {
	p := &Player{clock: SystemClock()}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset(seq)
	return p
}

// Reset replaces the sequence, stops playback and rewinds to index 0.
func (p *Player) Reset(seq *track.Sequence) {
	p.seq = seq
	p.index = 0
	p.state = Stopped
	p.anchorWall = time.Time{}
	p.anchorData = time.Time{}
}

// Sequence returns the sequence being played.
func (p *Player) Sequence() *track.Sequence { return p.seq }

// Index returns the cursor.
func (p *Player) Index() int { return p.index }

// State returns the playback state.
func (p *Player) State() State { return p.state }

// Playing reports whether playback is running.
func (p *Player) Playing() bool { return p.state == Playing }

// Start begins playback from the cursor. A cursor sitting on the last record
// rewinds to 0 first. Calling Start while playing re-anchors at the cursor.
func (p *Player) Start() error {
	if p.seq.Empty() {
		return ErrEmptySequence
	}
	if p.index >= p.seq.Last() {
		p.index = 0
	}
	p.anchorWall = p.clock.Now()
	p.anchorData = p.seq.At(p.index).Timestamp
	p.state = Playing
	return nil
}

// Stop pauses playback, keeping the cursor.
func (p *Player) Stop() {
	p.state = Stopped
}

// Target returns the data time playback has reached, or false when stopped.
func (p *Player) Target() (time.Time, bool) {
	if p.state != Playing {
		return time.Time{}, false
	}
	return p.anchorData.Add(p.clock.Now().Sub(p.anchorWall)), true
}

// Tick advances the cursor to match elapsed wall time.
//
// The scan starts at the cursor and only moves forward, so records must be in
// ascending time order. Ticks while stopped are no-ops.
func (p *Player) Tick() TickResult {
	res := TickResult{Index: p.index}
	target, ok := p.Target()
	if !ok {
		return res
	}

	last := p.seq.Last()
	next := p.index
	endReached := false
	for i := p.index; i <= last; i++ {
		if !p.seq.Records[i].Timestamp.Before(target) {
			next = i
			break
		}
		if i == last {
			endReached = true
		}
	}

	if endReached && target.After(p.seq.Records[last].Timestamp) {
		p.state = Stopped
		next = last
		res.Finished = true
	}

	res.Advanced = next != p.index
	res.Index = next
	p.index = next
	return res
}

// Seek moves the cursor to i, clamped to the sequence bounds.
// Playback must be stopped first.
func (p *Player) Seek(i int) (int, error) {
	if p.seq.Empty() {
		return 0, ErrEmptySequence
	}
	if p.state == Playing {
		return p.index, ErrPlaying
	}
	p.index = p.seq.Clamp(i)
	return p.index, nil
}

// StepPrev stops playback and moves back one record.
func (p *Player) StepPrev() int {
	return p.step(-1)
}

// StepNext stops playback and moves forward one record.
func (p *Player) StepNext() int {
	return p.step(1)
}

func (p *Player) step(delta int) int {
	p.Stop()
	if p.seq.Empty() {
		return 0
	}
	p.index = p.seq.Clamp(p.index + delta)
	return p.index
}
