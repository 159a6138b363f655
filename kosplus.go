package main

/*
	Kosinski+ bit-stream

	Same token set as Kosinski, but descriptor fields are single bytes
	consumed MSB-first, and the extended count byte N encodes length N+8
	(N == 0 terminates). There is no filler code and no padding.
*/

const kosPlusMaxLen = 263

type KosinskiPlus struct {
	stats *PackStats
}

func (k *KosinskiPlus) Name() string { return "kosinskiplus" }

func (k *KosinskiPlus) trackStats(stats *PackStats) { k.stats = stats }

func (k *KosinskiPlus) rules() matchRules {
	return matchRules{
		minLen:  2,
		maxLen:  kosPlusMaxLen,
		maxDist: kosMaxDist,
		valid: func(length, offset int) bool {
			return length >= 3 || offset <= 0x100
		},
	}
}

func (k *KosinskiPlus) litCost(count int) int { return 9 * count }

func (k *KosinskiPlus) matchCost(m Match) int {
	switch {
	case m.len <= 5 && m.off <= 0x100:
		return 4 + 8
	case m.len <= 9:
		return 2 + 16
	default:
		return 2 + 24
	}
}

func (k *KosinskiPlus) Encode(input []byte) []byte {
	tokens := tokenizeLazy(k, input)
	k.stats.addTokens(tokens)

	d := &descStream{fieldBits: 8, msbFirst: true}
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
				d.putByte(byte(t.len - 8))
			}
		}
	}

	d.putBit(0)
	d.putBit(1)
	d.putByte(0)
	d.putByte(0)
	d.putByte(0)
	d.flushField()
	return d.out
}

func (k *KosinskiPlus) Decode(input []byte) []byte {
	d := &descReader{data: input, fieldBits: 8, msbFirst: true}
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
				length = n + 8
			}
		}
		for i := 0; i < length; i++ {
			out = append(out, out[len(out)-dist])
		}
	}
	return out
}
