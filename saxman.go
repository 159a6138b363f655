package main

/*
	Saxman bit-stream

	Descriptor fields are single bytes consumed LSB-first, stored ahead
	of their data bytes.

	%1             literal byte
	%0             match: two bytes B1, B2
	               stored = B1 | ((B2 & 0xF0) << 4)
	               length = (B2 & 0x0F) + 3  (3-18)

	The stored value is the absolute source position minus 0x12, modulo
	the 0x1000 window. A reference resolving to before the start of the
	output zero-fills instead of copying. There is no end-of-stream
	marker; the stream ends when the compressed bytes run out, which is
	why the measured size is recorded in the sidecar file.
*/

const (
	saxMaxDist = 0x1000
	saxMinLen  = 3
	saxMaxLen  = 18
	saxBias    = 0x12
)

// Saxman implements the compression format expected by the alternative
// sound driver. The authentic flavour replicates the original tool:
// greedy parse plus a single zero terminator byte appended after the
// stream. The optimised flavour uses the lazy parse and appends nothing.
type Saxman struct {
	authentic bool
	stats     *PackStats
}

func (s *Saxman) Name() string {
	if s.authentic {
		return "saxman"
	}
	return "saxman-optimised"
}

func (s *Saxman) trackStats(stats *PackStats) { s.stats = stats }

func (s *Saxman) rules() matchRules {
	return matchRules{minLen: saxMinLen, maxLen: saxMaxLen, maxDist: saxMaxDist}
}

func (s *Saxman) litCost(count int) int { return 9 * count }

func (s *Saxman) matchCost(m Match) int { return 1 + 16 }

func (s *Saxman) Encode(input []byte) []byte {
	var tokens []Token
	if s.authentic {
		tokens = tokenizeGreedy(input, s.rules())
	} else {
		tokens = tokenizeLazy(s, input)
	}
	s.stats.addTokens(tokens)

	d := &descStream{fieldBits: 8}
	pos := 0
	for _, t := range tokens {
		if !t.isMatch {
			for i := 0; i < t.len; i++ {
				d.putBit(1)
				d.putByte(input[t.off+i])
			}
			pos += t.len
			continue
		}
		stored := (pos - t.off - saxBias) & 0xfff
		d.putBit(0)
		d.putByte(byte(stored))
		d.putByte(byte(stored>>4&0xf0) | byte(t.len-saxMinLen))
		pos += t.len
	}
	d.flushField()

	if s.authentic {
		d.out = append(d.out, 0)
	}
	return d.out
}

func (s *Saxman) Decode(input []byte) []byte {
	d := &descReader{data: input, fieldBits: 8}
	var out []byte
	for {
		if d.bitsLeft == 0 && d.exhausted() {
			break
		}
		if d.readBit() == 1 {
			if d.exhausted() {
				break
			}
			out = append(out, d.readByte())
			continue
		}
		if d.pos+2 > len(d.data) {
			break
		}
		b1 := int(d.readByte())
		b2 := int(d.readByte())
		stored := b1 | (b2&0xf0)<<4
		length := b2&0x0f + saxMinLen

		pos := len(out)
		src := (stored+saxBias)&0xfff | pos&^0xfff
		if src >= pos {
			src -= saxMaxDist
		}
		for i := 0; i < length; i++ {
			if src+i < 0 {
				out = append(out, 0)
			} else {
				out = append(out, out[src+i])
			}
		}
	}
	return out
}
