package main

import (
	"bytes"
	"testing"
)

// Deterministic pseudo-random filler so failures reproduce.
func fillNoise(buf []byte, seed uint32) {
	state := seed
	for i := range buf {
		state = state*1103515245 + 12345
		buf[i] = byte(state >> 16)
	}
}

func testInputs() map[string][]byte {
	text := []byte("the quick brown fox jumps over the lazy dog. ")
	repeated := bytes.Repeat(text, 40)

	zeros := make([]byte, 1000)

	noise := make([]byte, 2048)
	fillNoise(noise, 1)

	// Noise with embedded repeats, the shape of real driver code.
	mixed := make([]byte, 0, z80RAMSize/2)
	block := make([]byte, 256)
	fillNoise(block, 2)
	for len(mixed) < z80RAMSize/2-len(block) {
		mixed = append(mixed, block...)
		mixed = append(mixed, byte(len(mixed)))
	}

	return map[string][]byte{
		"empty":    nil,
		"single":   {0x42},
		"text":     repeated,
		"zeros":    zeros,
		"noise":    noise,
		"driverish": mixed,
	}
}

func TestCodecRoundTrips(t *testing.T) {
	for _, name := range codecNames {
		codec, err := NewCodec(name)
		if err != nil {
			t.Fatal(err)
		}
		for inputName, input := range testInputs() {
			t.Run(name+"/"+inputName, func(t *testing.T) {
				packed := codec.Encode(input)
				unpacked := codec.Decode(packed)
				if !bytes.Equal(input, unpacked) {
					t.Errorf("round trip failed: %d bytes in, %d bytes back",
						len(input), len(unpacked))
				}
			})
		}
	}
}

func TestUnknownCodec(t *testing.T) {
	if _, err := NewCodec("lzma"); err == nil {
		t.Error("expected an error for an unknown codec name")
	}
}

func TestUncompressedIsIdentity(t *testing.T) {
	codec, _ := NewCodec("uncompressed")
	input := []byte{1, 2, 3, 4, 5}
	packed := codec.Encode(input)
	if !bytes.Equal(packed, input) {
		t.Errorf("got % X, want % X", packed, input)
	}
	if len(packed) != len(input) {
		t.Errorf("padding bytes added: %d -> %d", len(input), len(packed))
	}
	// The returned buffer must not alias the input.
	packed[0] = 99
	if input[0] != 1 {
		t.Error("Encode aliases its input")
	}
}

func TestKosinskiAuthenticPadding(t *testing.T) {
	codec, _ := NewCodec("kosinski")
	for inputName, input := range testInputs() {
		packed := codec.Encode(input)
		if len(packed)%16 != 0 {
			t.Errorf("%s: output size 0x%X is not 16-byte aligned", inputName, len(packed))
		}
	}

	// The optimised flavour emits no padding, so it should not grow a
	// tiny input to an alignment boundary.
	optimised, _ := NewCodec("kosinski-optimised")
	if n := len(optimised.Encode([]byte{7})); n >= 16 {
		t.Errorf("optimised output unexpectedly large: %d bytes", n)
	}
}

func TestSaxmanAuthenticTerminator(t *testing.T) {
	authentic, _ := NewCodec("saxman")
	optimised, _ := NewCodec("saxman-optimised")
	input := bytes.Repeat([]byte{1, 2, 3, 4}, 32)

	a := authentic.Encode(input)
	o := optimised.Encode(input)
	if a[len(a)-1] != 0 {
		t.Errorf("authentic output does not end with the terminator byte: 0x%02X", a[len(a)-1])
	}
	// Both parses agree on this input, so the streams differ by exactly
	// the terminator.
	if !bytes.Equal(a[:len(a)-1], o) {
		t.Error("authentic output is not the optimised stream plus a terminator")
	}
}

func TestSaxmanZeroFill(t *testing.T) {
	// A match whose source resolves to before the start of the output
	// produces zero bytes. Hand-built stream: descriptor 0xFE (one match
	// flag, then literal flags with no data left), stored offset 0,
	// length 5.
	codec, _ := NewCodec("saxman")
	out := codec.Decode([]byte{0xfe, 0x00, 0x02})
	want := []byte{0, 0, 0, 0, 0}
	if !bytes.Equal(out, want) {
		t.Errorf("got % X, want % X", out, want)
	}
}

func TestKosinskiDecodeFiller(t *testing.T) {
	// The N==1 extended count is a filler the decoder skips. Build a
	// stream by hand: literal 'A', filler, literal 'B', terminator.
	d := &descStream{fieldBits: 16}
	d.putBit(1)
	d.putByte('A')
	d.putBit(0)
	d.putBit(1)
	d.putByte(0)
	d.putByte(0)
	d.putByte(1) // filler
	d.putBit(1)
	d.putByte('B')
	d.putBit(0)
	d.putBit(1)
	d.putByte(0)
	d.putByte(0)
	d.putByte(0) // end of stream
	d.flushField()

	out := kosDecode(d.out)
	if !bytes.Equal(out, []byte("AB")) {
		t.Errorf("got %q, want \"AB\"", out)
	}
}
