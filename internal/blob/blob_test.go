package blob_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextbillion-ai/osmpbf/internal/blob"
	"github.com/nextbillion-ai/osmpbf/internal/core"
	"github.com/nextbillion-ai/osmpbf/internal/pb"
)

func TestPackUnpackZlibRoundTrip(t *testing.T) {
	raw := []byte("the quick brown fox jumps over the lazy dog, repeatedly, for compression")

	b, err := blob.Pack(raw, blob.ZLIB)
	require.NoError(t, err)
	assert.Equal(t, "zlib", b.Compression())

	buf := core.NewPooledBuffer()
	defer buf.Close()

	got, err := blob.Unpack(buf, b)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestPackUnpackRawRoundTrip(t *testing.T) {
	raw := []byte("uncompressed payload")

	b, err := blob.Pack(raw, blob.RAW)
	require.NoError(t, err)
	assert.Equal(t, "raw", b.Compression())

	buf := core.NewPooledBuffer()
	defer buf.Close()

	got, err := blob.Unpack(buf, b)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestPackLzmaIsDecodeOnly(t *testing.T) {
	_, err := blob.Pack([]byte("x"), blob.LZMA)
	require.ErrorIs(t, err, blob.ErrUnsupportedCompression)
}

func TestUnpackChecksumMismatch(t *testing.T) {
	b, err := blob.Pack([]byte("hello"), blob.ZLIB)
	require.NoError(t, err)

	b.RawSize = 99

	buf := core.NewPooledBuffer()
	defer buf.Close()

	_, err = blob.Unpack(buf, b)
	assert.ErrorIs(t, err, blob.ErrChecksumMismatch)
}

func TestUnpackUnsupportedCompression(t *testing.T) {
	b := &pb.Blob{}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	_, err := blob.Unpack(buf, b)
	assert.ErrorIs(t, err, blob.ErrUnsupportedCompression)
}

func TestWriteReadRoundTrip(t *testing.T) {
	hdr := &pb.HeaderBlock{Writingprogram: "osmpbf-test"}

	var buf bytes.Buffer
	require.NoError(t, blob.Write(&buf, "OSMHeader", hdr, blob.ZLIB))

	got, err := blob.Read(&buf, blob.DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, "OSMHeader", got.Type)
	assert.Equal(t, "zlib", got.Blob.Compression())

	pbuf := core.NewPooledBuffer()
	defer pbuf.Close()

	raw, err := blob.Unpack(pbuf, got.Blob)
	require.NoError(t, err)

	roundTripped := &pb.HeaderBlock{}
	require.NoError(t, roundTripped.UnmarshalWire(raw))
	assert.Equal(t, hdr.Writingprogram, roundTripped.Writingprogram)
}

func TestReadEOFOnEmptyStream(t *testing.T) {
	_, err := blob.Read(&bytes.Buffer{}, blob.DefaultLimits())
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadTruncatedHeaderLength(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 10})

	_, err := blob.Read(buf, blob.DefaultLimits())
	assert.ErrorIs(t, err, blob.ErrTruncatedBlob)
}

func TestReadOversizedHeader(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0x7F, 0xFF, 0xFF, 0xFF})

	_, err := blob.Read(buf, blob.Limits{MaxHeaderSize: 1024, MaxPayloadSize: 1024})
	assert.ErrorIs(t, err, blob.ErrOversizedBlob)
}
