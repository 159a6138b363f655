package main

import (
	"bytes"
	"errors"
	"testing"
)

func TestReadIntegers(t *testing.T) {
	r := NewRecordReader(bytes.NewReader([]byte{
		0x34, 0x12,
		0x78, 0x56, 0x34, 0x12,
	}))

	w, err := r.ReadWord()
	if err != nil {
		t.Fatal(err)
	}
	if w != 0x1234 {
		t.Errorf("word: got 0x%X, want 0x1234", w)
	}

	l, err := r.ReadLong()
	if err != nil {
		t.Fatal(err)
	}
	if l != 0x12345678 {
		t.Errorf("long: got 0x%X, want 0x12345678", l)
	}
}

func TestPrematureEOF(t *testing.T) {
	r := NewRecordReader(bytes.NewReader([]byte{0x01, 0x02}))
	if _, err := r.ReadLong(); !errors.Is(err, ErrPrematureEOF) {
		t.Errorf("got %v, want ErrPrematureEOF", err)
	}

	r = NewRecordReader(bytes.NewReader(nil))
	if _, err := r.ReadByte(); !errors.Is(err, ErrPrematureEOF) {
		t.Errorf("got %v, want ErrPrematureEOF", err)
	}

	r = NewRecordReader(bytes.NewReader([]byte{1, 2, 3}))
	buf := make([]byte, 4)
	if err := r.ReadBytes(buf); !errors.Is(err, ErrPrematureEOF) {
		t.Errorf("got %v, want ErrPrematureEOF", err)
	}
}

func TestCheckMagic(t *testing.T) {
	var inputs = []struct {
		data []byte
		want error
	}{
		{[]byte{0x89, 0x14}, nil},
		{[]byte{0x89, 0x15}, ErrBadMagic},
		{[]byte{0x00, 0x00}, ErrBadMagic},
		{[]byte{0x89}, ErrPrematureEOF},
		{nil, ErrPrematureEOF},
	}
	for _, tt := range inputs {
		r := NewRecordReader(bytes.NewReader(tt.data))
		err := r.CheckMagic()
		if tt.want == nil {
			if err != nil {
				t.Errorf("%v: unexpected error %v", tt.data, err)
			}
		} else if !errors.Is(err, tt.want) {
			t.Errorf("%v: got %v, want %v", tt.data, err, tt.want)
		}
	}
}
