package engine

import (
	"errors"

	"github.com/gpsreplay/gpsreplay/pkg/export"
	"github.com/gpsreplay/gpsreplay/pkg/player"
)

var (
	// ErrIO wraps failures to read a source or write an export.
	// The underlying error stays in the chain.
	ErrIO = errors.New("i/o failure")

	// ErrNoUsableData is returned when a file loads but yields no records.
	ErrNoUsableData = errors.New("no usable data")

	// ErrNotLoaded is returned by operations that need a loaded file.
	ErrNotLoaded = errors.New("no file loaded")

	// ErrInvalidSeek is returned when a seek target lies past the last record.
	ErrInvalidSeek = errors.New("seek target is after the last record")

	// ErrMissingMarks is returned when exporting a selection without both marks.
	ErrMissingMarks = export.ErrMissingMarks

	// ErrEmptySequence is returned for cursor operations on an empty sequence.
	ErrEmptySequence = player.ErrEmptySequence
)
