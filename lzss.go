package main

// Describes a match or a series of literals.
type Token struct {
	isMatch bool
	len     int // length in bytes
	off     int // backwards distance if isMatch, abs position if literal
}

// Describes a single back-reference.
type Match struct {
	len int
	off int
}

// Per-format limits for the match finder.
type matchRules struct {
	minLen  int
	maxLen  int
	maxDist int
	// valid rejects matches the format cannot encode. nil accepts all.
	valid func(length, offset int) bool
}

// Interface for costing tokens during the lazy parse. Costs are in bits,
// including the data bytes a token drags along.
type sizer interface {
	litCost(count int) int
	matchCost(m Match) int
	rules() matchRules
}

func findLongestMatch(data []byte, head int, r matchRules) Match {
	bestOffset := 0
	bestLength := 0
	maxDist := r.maxDist
	if head < maxDist {
		maxDist = head
	}

	for offset := 1; offset <= maxDist; offset++ {
		length := 0
		checkPos := head - offset
		for head+length < len(data) && length < r.maxLen &&
			data[checkPos+length] == data[head+length] {
			length++
		}
		if length < r.minLen || length <= bestLength {
			continue
		}
		if r.valid != nil && !r.valid(length, offset) {
			continue
		}
		bestLength = length
		bestOffset = offset
	}
	return Match{len: bestLength, off: bestOffset}
}

// Add a number of literals to a set of tokens. If the last entry was
// already a literal run, extend it instead of starting a new token.
func addLiterals(tokens []Token, count int, pos int) []Token {
	lastIndex := len(tokens) - 1
	if lastIndex >= 0 && !tokens[lastIndex].isMatch {
		tokens[lastIndex].len += count
		return tokens
	}
	return append(tokens, Token{false, count, pos})
}

// Greedy parse: always take the longest match available.
func tokenizeGreedy(data []byte, r matchRules) []Token {
	var tokens []Token
	head := 0
	for head < len(data) {
		best := findLongestMatch(data, head, r)
		if best.len != 0 {
			tokens = append(tokens, Token{true, best.len, best.off})
			head += best.len
		} else {
			tokens = addLiterals(tokens, 1, head)
			head++
		}
	}
	return tokens
}

// Lazy parse: a match is dropped when encoding its bytes as literals is
// cheaper, or when stepping one byte forward exposes a better match.
func tokenizeLazy(s sizer, data []byte) []Token {
	r := s.rules()
	var tokens []Token
	head := 0
	for head < len(data) {
		best0 := findLongestMatch(data, head, r)
		chooseLit := best0.len == 0

		if !chooseLit && s.litCost(best0.len) < s.matchCost(best0) {
			chooseLit = true
		}

		if !chooseLit && head+1 < len(data) {
			best1 := findLongestMatch(data, head+1, r)
			if best1.len != 0 {
				rate0 := float64(s.matchCost(best0)) / float64(best0.len)
				rate1 := float64(s.litCost(1)+s.matchCost(best1)) / float64(1+best1.len)
				if rate1 < rate0 {
					chooseLit = true
				}
			}
		}

		if chooseLit {
			tokens = addLiterals(tokens, 1, head)
			head++
		} else {
			tokens = append(tokens, Token{true, best0.len, best0.off})
			head += best0.len
		}
	}
	return tokens
}

// descStream interleaves descriptor bit fields with the data bytes their
// bits describe. A field is emitted ahead of its data bytes, which is the
// layout the target decompressors expect.
type descStream struct {
	out      []byte
	field    uint16
	bitCount int
	pending  []byte

	fieldBits int // 8 or 16
	msbFirst  bool
}

func (d *descStream) putBit(bit int) {
	if d.bitCount == d.fieldBits {
		d.flushField()
	}
	if bit != 0 {
		if d.msbFirst {
			d.field |= 1 << (d.fieldBits - 1 - d.bitCount)
		} else {
			d.field |= 1 << d.bitCount
		}
	}
	d.bitCount++
}

func (d *descStream) putByte(b byte) {
	d.pending = append(d.pending, b)
}

// Emit the current field (16-bit fields are little-endian) followed by
// the data bytes accumulated against it.
func (d *descStream) flushField() {
	if d.bitCount == 0 && len(d.pending) == 0 {
		return
	}
	if d.fieldBits == 16 {
		d.out = append(d.out, byte(d.field&0xff), byte(d.field>>8))
	} else {
		d.out = append(d.out, byte(d.field))
	}
	d.out = append(d.out, d.pending...)
	d.pending = d.pending[:0]
	d.field = 0
	d.bitCount = 0
}

// descReader mirrors descStream for the decode direction.
type descReader struct {
	data     []byte
	pos      int
	field    uint16
	bitsLeft int

	fieldBits int
	msbFirst  bool
}

func (d *descReader) readBit() int {
	if d.bitsLeft == 0 {
		if d.fieldBits == 16 {
			d.field = uint16(d.data[d.pos]) | uint16(d.data[d.pos+1])<<8
			d.pos += 2
		} else {
			d.field = uint16(d.data[d.pos])
			d.pos++
		}
		d.bitsLeft = d.fieldBits
	}
	var bit int
	if d.msbFirst {
		bit = int(d.field>>(d.fieldBits-1)) & 1
		d.field = (d.field << 1) & uint16(1<<d.fieldBits-1)
	} else {
		bit = int(d.field) & 1
		d.field >>= 1
	}
	d.bitsLeft--
	return bit
}

func (d *descReader) readByte() byte {
	b := d.data[d.pos]
	d.pos++
	return b
}

func (d *descReader) exhausted() bool {
	return d.pos >= len(d.data)
}
