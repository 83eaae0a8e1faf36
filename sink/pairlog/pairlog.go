// Package pairlog stores mixed pairs as a compact block-compressed binary
// log.
//
// A log starts with a 6-byte header (magic "MIXP", format version, codec)
// followed by blocks of fixed-size little-endian pair records. Each block
// is framed as [uncompressed uint32][compressed uint32][data]; a zero
// compressed size marks a raw block.
package pairlog

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/hupe1980/mixgo/model"
)

const (
	magic   = "MIXP"
	version = 1

	// DefaultBlockPairs is the number of pairs per block.
	DefaultBlockPairs = 4096
	// MaxBlockPairs bounds the block size on both sides of the log.
	MaxBlockPairs = 1 << 16
)

var (
	// ErrUnknownCodec is returned for an unrecognized codec name or id.
	ErrUnknownCodec = errors.New("pairlog: unknown codec")
	// ErrBadHeader is returned when the stream is not a pair log.
	ErrBadHeader = errors.New("pairlog: bad header")
	// ErrCorrupt is returned for a truncated or undecodable block.
	ErrCorrupt = errors.New("pairlog: corrupt block")
	// ErrClosed is returned by WritePair after Close.
	ErrClosed = errors.New("pairlog: writer closed")
)

// Option configures a Writer.
type Option func(*Writer)

// WithCodec sets the block compression. The default is CodecZstd.
func WithCodec(c Codec) Option {
	return func(w *Writer) { w.codec = c }
}

// WithBlockPairs sets the number of pairs buffered per block, at most
// MaxBlockPairs.
func WithBlockPairs(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.blockPairs = min(n, MaxBlockPairs)
		}
	}
}

// Writer appends pairs to a log. It implements mixer.Sink. A Writer is not
// safe for concurrent use.
type Writer struct {
	w          io.Writer
	codec      Codec
	blockPairs int

	raw     []byte
	block   []byte
	pending int
	pairs   int64
	closed  bool
}

// NewWriter writes the log header to w.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	pw := &Writer{
		w:          w,
		codec:      CodecZstd,
		blockPairs: DefaultBlockPairs,
	}
	for _, opt := range opts {
		opt(pw)
	}
	if int(pw.codec) >= len(codecNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, pw.codec)
	}

	header := append([]byte(magic), version, byte(pw.codec))
	if _, err := w.Write(header); err != nil {
		return nil, err
	}
	pw.raw = make([]byte, 0, pw.blockPairs*recordSize)
	return pw, nil
}

// WritePair buffers one pair, flushing a block when it is full.
func (w *Writer) WritePair(p *model.Pair) error {
	if w.closed {
		return ErrClosed
	}
	rec := fromPair(p)
	var err error
	w.raw, err = binary.Append(w.raw, binary.LittleEndian, &rec)
	if err != nil {
		return err
	}
	w.pending++
	w.pairs++
	if w.pending >= w.blockPairs {
		return w.Flush()
	}
	return nil
}

// Flush writes the buffered pairs as one block.
func (w *Writer) Flush() error {
	if w.pending == 0 {
		return nil
	}
	var err error
	w.block, err = appendBlock(w.block[:0], w.raw, w.codec)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(w.block); err != nil {
		return err
	}
	w.raw = w.raw[:0]
	w.pending = 0
	return nil
}

// Pairs returns the number of pairs written.
func (w *Writer) Pairs() int64 { return w.pairs }

// Close flushes the last block. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.Flush()
}

// Reader decodes a log written by Writer.
type Reader struct {
	r     *bufio.Reader
	codec Codec
}

// NewReader validates the log header.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	var header [6]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if string(header[:4]) != magic || header[4] != version {
		return nil, ErrBadHeader
	}
	codec := Codec(header[5])
	if int(codec) >= len(codecNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCodec, codec)
	}
	return &Reader{r: br, codec: codec}, nil
}

// Codec returns the codec recorded in the header.
func (r *Reader) Codec() Codec { return r.codec }

// Pairs yields every pair in file order. Iteration stops at the first error.
func (r *Reader) Pairs() iter.Seq2[model.Pair, error] {
	return func(yield func(model.Pair, error) bool) {
		var (
			head [blockHeaderSize]byte
			body []byte
			data []byte
		)
		for {
			if _, err := io.ReadFull(r.r, head[:]); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				yield(model.Pair{}, fmt.Errorf("%w: %v", ErrCorrupt, err))
				return
			}
			uncompressed := binary.LittleEndian.Uint32(head[0:])
			compressed := binary.LittleEndian.Uint32(head[4:])
			if uncompressed%uint32(recordSize) != 0 || uncompressed > maxBlockBytes {
				yield(model.Pair{}, fmt.Errorf("%w: block size %d", ErrCorrupt, uncompressed))
				return
			}
			// Compressed bodies are only stored when they shrink.
			if compressed > uncompressed {
				yield(model.Pair{}, fmt.Errorf("%w: compressed size %d", ErrCorrupt, compressed))
				return
			}

			size := compressed
			if size == 0 {
				size = uncompressed
			}
			if uint32(cap(body)) < size {
				body = make([]byte, size)
			}
			body = body[:size]
			if _, err := io.ReadFull(r.r, body); err != nil {
				yield(model.Pair{}, fmt.Errorf("%w: %v", ErrCorrupt, err))
				return
			}

			block := body
			if compressed != 0 {
				var err error
				data, err = decodeBlock(data, body, uncompressed, r.codec)
				if err != nil {
					yield(model.Pair{}, err)
					return
				}
				block = data
			}

			for off := 0; off < len(block); off += recordSize {
				var rec record
				if _, err := binary.Decode(block[off:off+recordSize], binary.LittleEndian, &rec); err != nil {
					yield(model.Pair{}, fmt.Errorf("%w: %v", ErrCorrupt, err))
					return
				}
				if !yield(rec.pair(), nil) {
					return
				}
			}
		}
	}
}
