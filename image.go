package main

// Copy batching size for direct segment writes. Purely an I/O batching
// detail, no effect on the output.
const copyChunkSize = 0x1000

// ImageWriter owns the growing output image. Writes are expressed as
// absolute addresses; a write beyond the current maximum address first
// fills the gap with the padding byte. Previously written regions are
// never truncated, so the maximum address only ever grows.
type ImageWriter struct {
	data    []byte
	padding byte
}

func NewImageWriter(padding byte) *ImageWriter {
	return &ImageWriter{padding: padding}
}

// MaxAddress is the high-water mark: one past the last byte ever written
// or padded.
func (w *ImageWriter) MaxAddress() int {
	return len(w.data)
}

func (w *ImageWriter) Bytes() []byte {
	return w.data
}

func (w *ImageWriter) WriteAt(addr int, b []byte) {
	if addr > len(w.data) {
		gap := addr - len(w.data)
		for i := 0; i < gap; i++ {
			w.data = append(w.data, w.padding)
		}
	}
	if end := addr + len(b); end > len(w.data) {
		w.data = append(w.data, make([]byte, end-len(w.data))...)
	}
	copy(w.data[addr:], b)
}

// CopyFrom streams length bytes from the record reader to the image at
// the given address, in copyChunkSize batches.
func (w *ImageWriter) CopyFrom(r *RecordReader, addr int, length int) error {
	var chunk [copyChunkSize]byte
	for done := 0; done < length; {
		n := length - done
		if n > len(chunk) {
			n = len(chunk)
		}
		if err := r.ReadBytes(chunk[:n]); err != nil {
			return err
		}
		w.WriteAt(addr+done, chunk[:n])
		done += n
	}
	return nil
}
