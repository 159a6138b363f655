package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// Processor family tag for Z80 segments. Anything else is copied to
	// the output image directly.
	familyZ80 = 0x51

	// The Z80's addressable RAM; also the aggregation buffer capacity.
	z80RAMSize = 0x2000
)

var (
	ErrUnknownRecord = errors.New("unrecognised record header value")
	ErrGranularity   = errors.New("unsupported granularity")
	ErrReservation   = errors.New("reserved space is too small for the compressed data")
)

// ConversionSession owns all mutable state of one conversion: the input
// record stream, the output image, the open aggregation run and the
// bookmarks the reservation checks depend on. A session converts one
// stream and is not reused.
type ConversionSession struct {
	cfg   *Config
	in    *RecordReader
	image *ImageWriter
	slots []*Slot

	sidecar io.Writer // nil when no sidecar is configured
	diag    io.Writer
	verify  bool
	verbose bool
	report  *Report

	run *AggregationRun

	// The most recent direct-copy segment, used as the overwrite target.
	lastStart  int
	lastLength int
	hasLast    bool

	// End cursor of the last append-mode flush, checked against the next
	// direct-copy segment. -1 when nothing is pending.
	pendingEnd  int
	pendingSlot *Slot
}

func NewSession(cfg *Config, in *RecordReader) (*ConversionSession, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &ConversionSession{
		cfg:        cfg,
		in:         in,
		image:      NewImageWriter(cfg.Padding),
		diag:       os.Stderr,
		report:     &Report{},
		pendingEnd: -1,
	}
	for i := range cfg.Slots {
		sc := &cfg.Slots[i]
		codec, err := NewCodec(sc.Codec)
		if err != nil {
			return nil, err
		}
		s.slots = append(s.slots, &Slot{
			anchor:   int(sc.Anchor),
			constant: sc.Constant,
			mode:     cfg.EffectiveMode(sc),
			fatal:    sc.Fatal,
			codec:    codec,
		})
	}
	return s, nil
}

func (s *ConversionSession) Image() *ImageWriter { return s.image }
func (s *ConversionSession) Report() *Report    { return s.report }

func (s *ConversionSession) findSlot(addr int) *Slot {
	for _, slot := range s.slots {
		if slot.anchor == addr {
			return slot
		}
	}
	return nil
}

// Convert drives the record state machine over the whole stream. Any
// error aborts the conversion; the caller discards the output.
func (s *ConversionSession) Convert() error {
	if err := s.in.CheckMagic(); err != nil {
		return err
	}
	for {
		header, err := s.in.ReadByte()
		if err != nil {
			return err
		}
		switch {
		case header == 0x00:
			// Creator string; marks the end of the file. A run left
			// open here is still emitted.
			return s.flushRun()

		case header == 0x80:
			// Entry point; not needed for a flat image.
			if _, err := s.in.ReadLong(); err != nil {
				return err
			}

		case header == 0x81:
			family, err := s.in.ReadByte()
			if err != nil {
				return err
			}
			// Segment index, unused.
			if _, err := s.in.ReadByte(); err != nil {
				return err
			}
			granularity, err := s.in.ReadByte()
			if err != nil {
				return err
			}
			if granularity != 1 {
				return fmt.Errorf("%w: %d (only 1 is supported)", ErrGranularity, granularity)
			}
			if err := s.processSegment(family); err != nil {
				return err
			}

		case header < 0x80:
			// Legacy CODE segment: the header byte doubles as the
			// processor family.
			if err := s.processSegment(header); err != nil {
				return err
			}

		default:
			return fmt.Errorf("%w: 0x%02X", ErrUnknownRecord, header)
		}
	}
}

// processSegment classifies one segment and routes it to the aggregation
// run or to a direct copy into the image.
func (s *ConversionSession) processSegment(family byte) error {
	start32, err := s.in.ReadLong()
	if err != nil {
		return err
	}
	length16, err := s.in.ReadWord()
	if err != nil {
		return err
	}
	start := int(start32)
	length := int(length16)

	if family == familyZ80 {
		if s.run != nil && s.run.Continues(start) {
			return s.run.AppendFrom(s.in, length)
		}
		if slot := s.findSlot(start); slot != nil {
			// A new anchor discontinues any open run.
			if err := s.flushRun(); err != nil {
				return err
			}
			s.run = newRun(slot, start)
			return s.run.AppendFrom(s.in, length)
		}
	}

	// Direct copy. Anything that isn't anchored or contiguous Z80 code
	// goes straight to its absolute address.
	if err := s.flushRun(); err != nil {
		return err
	}
	if s.pendingEnd >= 0 {
		if start < s.pendingEnd {
			err := s.reservationOverflow(s.pendingSlot,
				fmt.Sprintf("compressed %s data reaches 0x%X but the next segment starts at 0x%X",
					s.pendingSlot.constant, s.pendingEnd, start))
			if err != nil {
				return err
			}
		}
		s.pendingEnd = -1
		s.pendingSlot = nil
	}
	if err := s.image.CopyFrom(s.in, start, length); err != nil {
		return err
	}
	s.lastStart = start
	s.lastLength = length
	s.hasLast = true
	if s.verbose {
		fmt.Fprintf(s.diag, "segment: family 0x%02X at 0x%X, 0x%X bytes\n", family, start, length)
	}
	return nil
}

// flushRun emits the open aggregation run, if any: compress, place,
// validate the reservation and annotate the sidecar.
func (s *ConversionSession) flushRun() error {
	if s.run == nil {
		return nil
	}
	run := s.run
	s.run = nil
	slot := run.slot

	cursor := s.image.MaxAddress()
	if slot.mode == ModeOverwrite && s.hasLast {
		cursor = s.lastStart
	}

	data := run.Bytes()
	packed := slot.codec.Encode(data)
	if s.verify {
		if !bytes.Equal(slot.codec.Decode(packed), data) {
			return fmt.Errorf("codec %s failed the decode round trip, there is a bug",
				slot.codec.Name())
		}
	}
	s.image.WriteAt(cursor, packed)
	size := len(packed)

	if slot.mode == ModeOverwrite && s.hasLast {
		if size > s.lastLength {
			err := s.reservationOverflow(slot,
				fmt.Sprintf("%s is 0x%X bytes but only 0x%X were reserved",
					slot.constant, size, s.lastLength))
			if err != nil {
				return err
			}
		}
	} else {
		s.pendingEnd = cursor + size
		s.pendingSlot = slot
	}

	if s.sidecar != nil {
		if _, err := fmt.Fprintf(s.sidecar, "%s 0x%X ", slot.constant, size); err != nil {
			return fmt.Errorf("could not write sidecar entry: %w", err)
		}
	}
	s.report.AddRun(slot, data, size)
	if s.verbose {
		fmt.Fprintf(s.diag, "%s: 0x%X -> 0x%X bytes (%s) at 0x%X\n",
			slot.constant, run.size, size, slot.codec.Name(), cursor)
	}
	return nil
}

// reservationOverflow applies the slot's overflow policy: abort, or warn
// on the diagnostic channel and keep converting.
func (s *ConversionSession) reservationOverflow(slot *Slot, detail string) error {
	if slot.fatal {
		return fmt.Errorf("%w: %s", ErrReservation, detail)
	}
	fmt.Fprintf(s.diag, "Warning: %s\n", detail)
	return nil
}
