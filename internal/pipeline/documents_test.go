package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk unplugged")
}

func TestEncodeDocument_RoundTripIsLossless(t *testing.T) {
	data := make([]byte, 0, 1024)
	for i := 0; i < 4; i++ {
		for b := 0; b < 256; b++ {
			data = append(data, byte(b))
		}
	}

	part, err := EncodeDocument(domain.InputDocument{Name: "scan.png", MediaType: "image/png", Data: data})
	require.NoError(t, err)

	assert.Equal(t, "image/png", part.MediaType)
	assert.Equal(t, "scan.png", part.Name)
	assert.NotContains(t, part.Data, "\n")

	decoded, err := part.Bytes()
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestEncodeDocument_EmptyPayload(t *testing.T) {
	part, err := EncodeDocument(domain.InputDocument{Name: "empty.pdf", MediaType: MediaTypePDF})
	require.NoError(t, err)

	decoded, err := part.Bytes()
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestEncodeReader_ReadFailure(t *testing.T) {
	_, err := EncodeReader("broken.pdf", MediaTypePDF, failingReader{})
	require.Error(t, err)

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "broken.pdf", encErr.Name)
	assert.Contains(t, err.Error(), "disk unplugged")
}

func TestEncodeDocuments_PreservesOrder(t *testing.T) {
	var docs []domain.InputDocument
	for i := 0; i < 25; i++ {
		mt := "image/jpeg"
		if i%3 == 0 {
			mt = MediaTypePDF
		}
		docs = append(docs, domain.InputDocument{
			Name:      fmt.Sprintf("page-%02d", i),
			MediaType: mt,
			Data:      []byte(strings.Repeat(fmt.Sprint(i), i+1)),
		})
	}

	parts, failed := EncodeDocuments(context.Background(), docs, 3)
	require.Empty(t, failed)
	require.Len(t, parts, len(docs))

	for i, p := range parts {
		assert.Equal(t, docs[i].Name, p.Name)
		assert.Equal(t, docs[i].MediaType, p.MediaType)
		b, err := p.Bytes()
		require.NoError(t, err)
		assert.Equal(t, docs[i].Data, b)
	}
}

func TestEncodeDocuments_CancelledContextExcludesAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []domain.InputDocument{
		{Name: "a.pdf", MediaType: MediaTypePDF, Data: []byte("a")},
		{Name: "b.pdf", MediaType: MediaTypePDF, Data: []byte("b")},
	}
	parts, failed := EncodeDocuments(ctx, docs, 0)
	assert.Empty(t, parts)
	require.Len(t, failed, 2)

	var encErr *EncodingError
	assert.True(t, errors.As(failed[0], &encErr))
}

func TestIsQualifying(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{"application/pdf", true},
		{"APPLICATION/PDF", true},
		{"image/png", true},
		{"image/jpeg", true},
		{"image/webp", true},
		{"image/heic; q=0.5", true},
		{"image/", false},
		{"text/csv", false},
		{"application/vnd.ms-excel", false},
		{"application/pdfx", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			assert.Equal(t, tt.want, IsQualifying(tt.mediaType))
		})
	}
}

func TestFilterQualifying(t *testing.T) {
	docs := []domain.InputDocument{
		{Name: "notes.txt", MediaType: "text/plain"},
		{Name: "jan.pdf", MediaType: "application/pdf"},
		{Name: "export.csv", MediaType: "text/csv"},
		{Name: "feb.png", MediaType: "image/png"},
	}

	got := FilterQualifying(docs)
	require.Len(t, got, 2)
	assert.Equal(t, "jan.pdf", got[0].Name)
	assert.Equal(t, "feb.png", got[1].Name)

	assert.Empty(t, FilterQualifying(docs[2:3]))
	assert.Empty(t, FilterQualifying(nil))
}
