package video

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawStream returns n frames of size bytes, frame i filled with byte i.
func rawStream(n, size int) []byte {
	var b bytes.Buffer
	for i := 0; i < n; i++ {
		b.Write(bytes.Repeat([]byte{byte(i)}, size))
	}
	return b.Bytes()
}

func TestReader_ReadBatch(t *testing.T) {
	const size = 12
	r := NewReader(bytes.NewReader(rawStream(5, size)), size, NewBufferPool(size, 4))

	batch, err := r.ReadBatch(3)
	require.NoError(t, err)
	require.Len(t, batch, 3)
	assert.Equal(t, byte(2), batch[2][0])
	r.Release(batch)

	batch, err = r.ReadBatch(3)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, byte(4), batch[1][size-1])
	r.Release(batch)

	_, err = r.ReadBatch(3)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 5, r.Count())
}

func TestReader_ShortTrailingFrame(t *testing.T) {
	const size = 12
	data := append(rawStream(2, size), 1, 2, 3)
	r := NewReader(bytes.NewReader(data), size, NewBufferPool(size, 4))

	batch, err := r.ReadBatch(10)
	assert.ErrorIs(t, err, ErrShortFrame)
	assert.Len(t, batch, 2)
	assert.Equal(t, 2, r.Count())

	_, err = r.ReadBatch(10)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_EmptyStream(t *testing.T) {
	r := NewReader(bytes.NewReader(nil), 12, NewBufferPool(12, 1))
	_, err := r.ReadBatch(4)
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, r.Count())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("pipe broken") }

func TestReader_PropagatesReadError(t *testing.T) {
	r := NewReader(failingReader{}, 12, NewBufferPool(12, 1))
	_, err := r.ReadBatch(4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipe broken")
}

func TestBufferPool_Reuse(t *testing.T) {
	p := NewBufferPool(4, 1)
	f := p.Get()
	f[0] = 9
	p.Put(f)
	assert.Equal(t, byte(9), p.Get()[0])

	// Wrong size is dropped, the next Get allocates.
	p.Put(make(Frame, 3))
	assert.Len(t, p.Get(), 4)
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{"even", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"remainder", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"size larger than input", []int{1, 2}, 8, [][]int{{1, 2}}},
		{"empty", nil, 3, [][]int{}},
		{"non positive size", []int{1, 2}, 0, [][]int{{1}, {2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.items, tt.size))
		})
	}
}
