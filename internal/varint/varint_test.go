package varint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nextbillion-ai/osmpbf/internal/varint"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 32, ^uint64(0)}

	for _, v := range values {
		buf := varint.AppendUvarint(nil, v)

		got, n, err := varint.ConsumeUvarint(buf)
		assert.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
		assert.LessOrEqual(t, len(buf), varint.MaxBytes)
	}
}

func TestConsumeUvarintTruncated(t *testing.T) {
	_, _, err := varint.ConsumeUvarint([]byte{0x80, 0x80})
	assert.ErrorIs(t, err, varint.ErrMalformedVarint)
}

func TestConsumeUvarintOversized(t *testing.T) {
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0x80
	}

	_, _, err := varint.ConsumeUvarint(buf)
	assert.ErrorIs(t, err, varint.ErrMalformedVarint)
}

func TestZigzag64RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 1 << 40, -(1 << 40)}

	for _, v := range values {
		assert.Equal(t, v, varint.DecodeZigzag64(varint.EncodeZigzag64(v)))
	}
}

func TestZigzag32RoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 2, -2, 1 << 20, -(1 << 20)}

	for _, v := range values {
		assert.Equal(t, v, varint.DecodeZigzag32(varint.EncodeZigzag32(v)))
	}
}
