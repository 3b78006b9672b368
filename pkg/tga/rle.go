package tga

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// maxRunLength is the longest run a single packet can describe.
const maxRunLength = 128

// encodeRLE writes pix (a flat sequence of bpp-byte pixels) as TGA RLE
// packets. A run is classified by its first two pixels: equal pixels start
// a repeat packet, different pixels start a raw packet. A raw run stops as
// soon as two consecutive pixels are equal so that the pair can start the
// next repeat run; a repeat run stops at the first differing pixel.
func encodeRLE(w *bufio.Writer, pix []byte, bpp int) error {
	npixels := len(pix) / bpp
	cur := 0

	for cur < npixels {
		start := cur * bpp
		curbyte := start
		runLength := 1
		raw := true

		for cur+runLength < npixels && runLength < maxRunLength {
			succEq := bytes.Equal(pix[curbyte:curbyte+bpp], pix[curbyte+bpp:curbyte+2*bpp])
			curbyte += bpp
			if runLength == 1 {
				raw = !succEq
			}
			if raw && succEq {
				runLength--
				break
			}
			if !raw && !succEq {
				break
			}
			runLength++
		}

		cur += runLength

		if raw {
			if err := w.WriteByte(byte(runLength - 1)); err != nil {
				return err
			}
			if _, err := w.Write(pix[start : start+runLength*bpp]); err != nil {
				return err
			}
			continue
		}
		if err := w.WriteByte(byte(runLength + 127)); err != nil {
			return err
		}
		if _, err := w.Write(pix[start : start+bpp]); err != nil {
			return err
		}
	}
	return nil
}

// decodeRLE reads RLE packets until npixels pixels of bpp bytes are filled.
func decodeRLE(r *bufio.Reader, npixels, bpp int) ([]byte, error) {
	data := make([]byte, 0, min(npixels*bpp, maxPrealloc))
	packet := make([]byte, maxRunLength*bpp)
	read := 0

	for read < npixels {
		header, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: read packet header: %w", ErrIO, unexpected(err))
		}
		count := int(header&0x7F) + 1
		if read+count > npixels {
			return nil, fmt.Errorf("%w: run of %d pixels overflows image at pixel %d of %d", ErrFormat, count, read, npixels)
		}

		if header&0x80 != 0 {
			pixel := packet[:bpp]
			if _, err := io.ReadFull(r, pixel); err != nil {
				return nil, fmt.Errorf("%w: read repeat pixel: %w", ErrIO, unexpected(err))
			}
			for range count {
				data = append(data, pixel...)
			}
			read += count
			continue
		}

		raw := packet[:count*bpp]
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("%w: read raw packet: %w", ErrIO, unexpected(err))
		}
		data = append(data, raw...)
		read += count
	}
	return data, nil
}

// unexpected turns a clean EOF in the middle of a stream into ErrUnexpectedEOF.
func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
