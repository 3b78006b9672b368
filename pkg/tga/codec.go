package tga

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

var (
	developerAreaRef = [4]byte{}
	extensionAreaRef = [4]byte{}
	footer           = []byte("TRUEVISION-XFILE.\x00")
)

// EncodeOptions controls how an image is written.
type EncodeOptions struct {
	// VFlip declares a bottom-left origin. Rows are written in memory order
	// either way; only the image descriptor changes.
	VFlip bool
	// RLE selects run-length encoded pixel data.
	RLE bool
}

// ReadHeader reads and validates the 18-byte header.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, fmt.Errorf("%w: read header: %w", ErrIO, unexpected(err))
	}
	var h Header
	if err := h.UnmarshalBinary(buf[:]); err != nil {
		return Header{}, err
	}
	if _, err := h.format(); err != nil {
		return h, err
	}
	return h, nil
}

// Decode reads a TGA image. Pixel rows are kept in file order.
func Decode(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)

	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	format, _ := h.format()

	if h.IDLength > 0 {
		if _, err := br.Discard(int(h.IDLength)); err != nil {
			return nil, fmt.Errorf("%w: skip image id: %w", ErrIO, unexpected(err))
		}
	}

	img := &Image{
		width:  int(h.Width),
		height: int(h.Height),
		bpp:    int(format),
	}
	npixels := img.width * img.height

	if h.RLE() {
		img.data, err = decodeRLE(br, npixels, img.bpp)
		if err != nil {
			return nil, err
		}
		return img, nil
	}

	img.data, err = readPixels(br, npixels*img.bpp)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// maxPrealloc caps the buffer reserved from header dimensions before any
// pixel data has arrived.
const maxPrealloc = 1 << 20

// readPixels reads exactly n bytes, growing the buffer as data arrives.
func readPixels(r io.Reader, n int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(min(n, maxPrealloc))
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		return nil, fmt.Errorf("%w: read pixel data: %w", ErrIO, unexpected(err))
	}
	return buf.Bytes(), nil
}

// Load decodes the TGA file at path.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Header returns the header Encode would write for opts.
func (img *Image) Header(opts EncodeOptions) Header {
	h := Header{
		DataTypeCode: dataTypeCode(img.Format(), opts.RLE),
		Width:        uint16(img.width),
		Height:       uint16(img.height),
		BitsPerPixel: uint8(img.bpp << 3),
	}
	if !opts.VFlip {
		h.ImageDescriptor = descriptorTopLeft
	}
	return h
}

// Encode writes the image as a TGA stream: header, pixel data, the
// developer and extension area references, and the version 2 footer.
func (img *Image) Encode(w io.Writer, opts EncodeOptions) error {
	if img.width > MaxDimension || img.height > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrInvalidFormat, img.width, img.height, MaxDimension, MaxDimension)
	}

	bw := bufio.NewWriter(w)
	hdr, _ := img.Header(opts).MarshalBinary()
	if _, err := bw.Write(hdr); err != nil {
		return fmt.Errorf("%w: write header: %w", ErrIO, err)
	}

	if opts.RLE {
		if err := encodeRLE(bw, img.data, img.bpp); err != nil {
			return fmt.Errorf("%w: write rle data: %w", ErrIO, err)
		}
	} else if _, err := bw.Write(img.data); err != nil {
		return fmt.Errorf("%w: write raw data: %w", ErrIO, err)
	}

	for _, b := range [][]byte{developerAreaRef[:], extensionAreaRef[:], footer} {
		if _, err := bw.Write(b); err != nil {
			return fmt.Errorf("%w: write footer: %w", ErrIO, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// WriteFile encodes the image to path.
func (img *Image) WriteFile(path string, vflip, rle bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := img.Encode(f, EncodeOptions{VFlip: vflip, RLE: rle}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
