package main

import (
	"errors"
	"fmt"
)

var ErrZ80RAMFull = errors.New("compressed Z80 segment will not fit in Z80 RAM")

// Slot is a resolved reservation slot: its configuration plus the codec
// instance the runs anchored at it are compressed with.
type Slot struct {
	anchor   int
	constant string
	mode     string
	fatal    bool
	codec    Codec
}

// AggregationRun collects consecutive Z80 segments into one buffer so the
// codec can work on the whole contiguous run rather than per segment.
// The buffer models the Z80's RAM and is never resized; a segment that
// would grow the run past the end of that RAM is a hard error.
type AggregationRun struct {
	slot   *Slot
	buffer [z80RAMSize]byte
	size   int // write cursor; sum of the appended segment lengths
	start  int // anchor address the run is keyed to
	end    int // address the previous segment in the run ended at
}

func newRun(slot *Slot, start int) *AggregationRun {
	return &AggregationRun{slot: slot, start: start, end: start}
}

// Continues reports whether a segment at the given address is the exact
// continuation of this run.
func (a *AggregationRun) Continues(addr int) bool {
	return addr == a.end
}

// AppendFrom reads a segment's payload into the run at the current write
// cursor. Addresses within the run increase monotonically because only
// exact continuations are ever appended.
func (a *AggregationRun) AppendFrom(r *RecordReader, length int) error {
	if a.end+length > z80RAMSize {
		return fmt.Errorf("%w (Z80 RAM ends at 0x%X but segment ends at 0x%X)",
			ErrZ80RAMFull, z80RAMSize, a.end+length)
	}
	if err := r.ReadBytes(a.buffer[a.size : a.size+length]); err != nil {
		return err
	}
	a.size += length
	a.end += length
	return nil
}

func (a *AggregationRun) Bytes() []byte {
	return a.buffer[:a.size]
}
