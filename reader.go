package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

var (
	ErrPrematureEOF = errors.New("file ended prematurely")
	ErrBadMagic     = errors.New("invalid header magic value")
)

// Code files start with these two bytes.
var codeFileMagic = [2]byte{0x89, 0x14}

// RecordReader provides the little-endian primitive reads the record
// stream is built from. Any short read is reported as ErrPrematureEOF;
// the conversion cannot continue past one.
type RecordReader struct {
	r *bufio.Reader
}

func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{r: bufio.NewReader(r)}
}

func (r *RecordReader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, ErrPrematureEOF
	}
	return b, nil
}

func (r *RecordReader) ReadWord() (uint16, error) {
	return readInteger16(r)
}

func (r *RecordReader) ReadLong() (uint32, error) {
	lo, err := readInteger16(r)
	if err != nil {
		return 0, err
	}
	hi, err := readInteger16(r)
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func readInteger16(r *RecordReader) (uint16, error) {
	lo, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	hi, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (r *RecordReader) ReadBytes(buf []byte) error {
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return ErrPrematureEOF
	}
	return nil
}

// CheckMagic consumes and validates the two-byte file header. It must be
// called before any record is read.
func (r *RecordReader) CheckMagic() error {
	var magic [2]byte
	if err := r.ReadBytes(magic[:]); err != nil {
		return fmt.Errorf("could not read header magic value: %w", err)
	}
	if magic != codeFileMagic {
		return fmt.Errorf("%w: expected 0x8914 but got 0x%02X%02X",
			ErrBadMagic, magic[0], magic[1])
	}
	return nil
}
