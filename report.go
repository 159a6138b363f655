package main

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

func Percent(num int, denom int) float32 {
	if denom == 0 {
		return 0.0
	}
	return 100.0 * float32(num) / float32(denom)
}

// One flushed aggregation run.
type RunReport struct {
	constant string
	codec    string
	rawSize  int
	packed   int
	data     []byte // raw run contents, kept only when baselines are wanted
}

// Report accumulates what the conversion did, for the stats command and
// verbose output.
type Report struct {
	keepData bool
	runs     []RunReport
}

func (r *Report) AddRun(slot *Slot, data []byte, packedSize int) {
	run := RunReport{
		constant: slot.constant,
		codec:    slot.codec.Name(),
		rawSize:  len(data),
		packed:   packedSize,
	}
	if r.keepData {
		run.data = append([]byte(nil), data...)
	}
	r.runs = append(r.runs, run)
}

// Print writes the post-conversion report. When run data was kept, each
// run also gets general-purpose reference sizes, to show how far off the
// chosen console format is.
func (r *Report) Print(w io.Writer, imageSize int) {
	fmt.Fprintln(w, "===== Complete =====")
	fmt.Fprintf(w, "Output image: 0x%X bytes\n", imageSize)
	for i := range r.runs {
		run := &r.runs[i]
		fmt.Fprintf(w, "%s (%s): 0x%X -> 0x%X bytes (%.1f%%)\n",
			run.constant, run.codec, run.rawSize, run.packed,
			Percent(run.packed, run.rawSize))
		if run.data != nil {
			fmt.Fprintf(w, "\treference: zstd 0x%X, lz4 0x%X\n",
				zstdSize(run.data), lz4Size(run.data))
		}
	}
}

func zstdSize(data []byte) int {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return len(data)
	}
	defer enc.Close()
	return len(enc.EncodeAll(data, nil))
}

func lz4Size(data []byte) int {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, buf, nil)
	if err != nil || n == 0 {
		// Incompressible; the block would be stored as-is.
		return len(data)
	}
	return n
}
