// Package video reads fixed-size raw frames from a decoder pipe.
package video

import (
	"errors"
	"io"
)

// ErrShortFrame reports a stream that ended partway through a frame.
var ErrShortFrame = errors.New("stream ended inside a frame")

// Frame is one rgb24 frame, width*height*3 bytes.
type Frame []byte

// BufferPool recycles frame buffers between read rounds to keep GC quiet
// on long decodes.
type BufferPool struct {
	size int
	pool chan Frame
}

// NewBufferPool creates a pool holding up to poolSize buffers of frameSize bytes.
func NewBufferPool(frameSize, poolSize int) *BufferPool {
	return &BufferPool{size: frameSize, pool: make(chan Frame, poolSize)}
}

// Get returns a pooled buffer, or a new one when the pool is empty.
func (p *BufferPool) Get() Frame {
	select {
	case f := <-p.pool:
		return f
	default:
		return make(Frame, p.size)
	}
}

// Put returns a buffer to the pool. Buffers of the wrong size, or beyond
// the pool's capacity, are dropped.
func (p *BufferPool) Put(f Frame) {
	if len(f) != p.size {
		return
	}
	select {
	case p.pool <- f:
	default:
	}
}

// Reader splits a raw video stream into frames.
type Reader struct {
	src   io.Reader
	pool  *BufferPool
	size  int
	count int
	done  bool
}

// NewReader reads frames of frameSize bytes from src using buffers from pool.
func NewReader(src io.Reader, frameSize int, pool *BufferPool) *Reader {
	return &Reader{src: src, pool: pool, size: frameSize}
}

// Count returns the number of whole frames read so far.
func (r *Reader) Count() int {
	return r.count
}

// ReadBatch reads up to n frames. It returns io.EOF once the stream is
// exhausted and no frames were read. A trailing partial frame is dropped
// and reported as ErrShortFrame alongside the whole frames before it.
func (r *Reader) ReadBatch(n int) ([]Frame, error) {
	if r.done {
		return nil, io.EOF
	}

	batch := make([]Frame, 0, n)
	for len(batch) < n {
		buf := r.pool.Get()
		_, err := io.ReadFull(r.src, buf)
		switch {
		case err == nil:
			batch = append(batch, buf)
			r.count++
			continue
		case errors.Is(err, io.EOF):
			err = nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			err = ErrShortFrame
		}

		r.pool.Put(buf)
		r.done = true
		if err == nil && len(batch) == 0 {
			return nil, io.EOF
		}
		return batch, err
	}
	return batch, nil
}

// Release hands a batch's buffers back to the pool. The frames must not be
// used afterwards.
func (r *Reader) Release(batch []Frame) {
	for _, f := range batch {
		r.pool.Put(f)
	}
}
