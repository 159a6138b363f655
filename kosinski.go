package main

/*
	Kosinski bit-stream

	Descriptor fields are 16-bit little-endian, bits consumed LSB-first,
	each field stored ahead of the data bytes its bits describe.

	%1             literal byte
	%00 cc         inline match: length cc+2 (2-5), one byte offset o,
	               distance 0x100-o (1-0x100)
	%01            full match: two bytes L, H
	               distance 0x2000 - (((H & 0xF8) << 5) | L)
	               count = H & 7; length count+2 when count != 0
	               count == 0: third byte N follows
	                 N == 0  end of stream
	                 N == 1  filler, skipped
	                 else    length N+1 (up to 256)

	A length-2 match is only encodable inline, so it needs a distance of
	0x100 or less.
*/

const (
	kosMaxDist = 0x2000
	kosMaxLen  = 256
)

// Kosinski implements the compression format used for the Z80 sound
// driver in most of the target ROMs. The authentic flavour replicates
// the original tool: greedy parse and zero padding of the output up to
// the next 16-byte boundary. The optimised flavour uses the lazy parse
// and emits no padding.
type Kosinski struct {
	authentic bool
	stats     *PackStats
}

func (k *Kosinski) Name() string {
	if k.authentic {
		return "kosinski"
	}
	return "kosinski-optimised"
}

func (k *Kosinski) trackStats(stats *PackStats) { k.stats = stats }

func (k *Kosinski) rules() matchRules {
	return matchRules{
		minLen:  2,
		maxLen:  kosMaxLen,
		maxDist: kosMaxDist,
		valid: func(length, offset int) bool {
			return length >= 3 || offset <= 0x100
		},
	}
}

func (k *Kosinski) litCost(count int) int { return 9 * count }

func (k *Kosinski) matchCost(m Match) int {
	switch {
	case m.len <= 5 && m.off <= 0x100:
		return 4 + 8
	case m.len <= 9:
		return 2 + 16
	default:
		return 2 + 24
	}
}

func (k *Kosinski) Encode(input []byte) []byte {
	var tokens []Token
	if k.authentic {
		tokens = tokenizeGreedy(input, k.rules())
	} else {
		tokens = tokenizeLazy(k, input)
	}
	k.stats.addTokens(tokens)

	out := kosEmit(tokens, input)
	if k.authentic {
		for len(out)%16 != 0 {
			out = append(out, 0)
		}
	}
	return out
}

func (k *Kosinski) Decode(input []byte) []byte {
	return kosDecode(input)
}

func kosEmit(tokens []Token, input []byte) []byte {
	d := &descStream{fieldBits: 16}
	for _, t := range tokens {
		switch {
		case !t.isMatch:
			for i := 0; i < t.len; i++ {
				d.putBit(1)
				d.putByte(input[t.off+i])
			}
		case t.len <= 5 && t.off <= 0x100:
			d.putBit(0)
			d.putBit(0)
			n := t.len - 2
			d.putBit(n >> 1)
			d.putBit(n & 1)
			d.putByte(byte(0x100 - t.off))
		default:
			d.putBit(0)
			d.putBit(1)
			v := (kosMaxDist - t.off) & 0x1fff
			if t.len <= 9 {
				d.putByte(byte(v))
				d.putByte(byte(v>>5&0xf8) | byte(t.len-2))
			} else {
				d.putByte(byte(v))
				d.putByte(byte(v >> 5 & 0xf8))
				d.putByte(byte(t.len - 1))
			}
		}
	}

	// End-of-stream token.
	d.putBit(0)
	d.putBit(1)
	d.putByte(0)
	d.putByte(0)
	d.putByte(0)
	d.flushField()
	return d.out
}

func kosDecode(input []byte) []byte {
	d := &descReader{data: input, fieldBits: 16}
	var out []byte
	for {
		if d.readBit() == 1 {
			out = append(out, d.readByte())
			continue
		}
		var length, dist int
		if d.readBit() == 0 {
			hi := d.readBit()
			lo := d.readBit()
			length = (hi<<1 | lo) + 2
			dist = 0x100 - int(d.readByte())
		} else {
			lo := int(d.readByte())
			hi := int(d.readByte())
			dist = kosMaxDist - ((hi&0xf8)<<5 | lo)
			length = hi&7 + 2
			if length == 2 {
				n := int(d.readByte())
				if n == 0 {
					break
				}
				if n == 1 {
					continue
				}
				length = n + 1
			}
		}
		for i := 0; i < length; i++ {
			out = append(out, out[len(out)-dist])
		}
	}
	return out
}
