package main

import "fmt"

// Interface for turning a raw buffer into one of the supported packed
// binary formats. Decode is the inverse, used for self-verification.
type Codec interface {
	Name() string
	Encode(input []byte) []byte
	Decode(input []byte) []byte
}

// Codecs that can report token statistics from their last Encode.
type tokenStatser interface {
	trackStats(stats *PackStats)
}

// The full set of supported format names.
var codecNames = []string{
	"uncompressed",
	"kosinski",
	"kosinski-optimised",
	"kosinskiplus",
	"saxman",
	"saxman-optimised",
}

func NewCodec(name string) (Codec, error) {
	switch name {
	case "uncompressed":
		return &Uncompressed{}, nil
	case "kosinski":
		return &Kosinski{authentic: true}, nil
	case "kosinski-optimised":
		return &Kosinski{}, nil
	case "kosinskiplus":
		return &KosinskiPlus{}, nil
	case "saxman":
		return &Saxman{authentic: true}, nil
	case "saxman-optimised":
		return &Saxman{}, nil
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// Uncompressed is the identity codec: a verbatim copy with no framing,
// no terminator and no padding.
type Uncompressed struct{}

func (u *Uncompressed) Name() string { return "uncompressed" }

func (u *Uncompressed) Encode(input []byte) []byte {
	return append([]byte(nil), input...)
}

func (u *Uncompressed) Decode(input []byte) []byte {
	return append([]byte(nil), input...)
}

// General packing statistics, collected over the tokens of an Encode.
type PackStats struct {
	lenMap     map[int]int
	distMap    map[int]int
	litLens    []int
	numMatches int
	numTokens  int
}

func NewPackStats() *PackStats {
	return &PackStats{
		lenMap:  make(map[int]int),
		distMap: make(map[int]int),
	}
}

func (s *PackStats) addTokens(tokens []Token) {
	if s == nil {
		return
	}
	for i := range tokens {
		t := &tokens[i]
		if t.isMatch {
			s.lenMap[t.len]++
			s.distMap[t.off]++
			s.numMatches++
		} else {
			s.litLens = append(s.litLens, t.len)
		}
	}
	s.numTokens += len(tokens)
}
