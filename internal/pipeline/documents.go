package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/dvloznov/statement-insights/internal/domain"
	"golang.org/x/sync/errgroup"
)

// EncodedPart is the transport-safe form of one InputDocument.
// Data is the standard base64 encoding of the full document bytes.
type EncodedPart struct {
	Name      string
	MediaType string
	Data      string
}

// Bytes decodes the part back to the original document bytes.
func (p EncodedPart) Bytes() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("EncodedPart.Bytes: decoding %q: %w", p.Name, err)
	}
	return b, nil
}

// EncodeReader reads r to completion and encodes its content.
// The media type is carried over unchanged.
func EncodeReader(name, mediaType string, r io.Reader) (EncodedPart, error) {
	if r == nil {
		return EncodedPart{}, NewEncodingError(name, fmt.Errorf("nil reader"))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return EncodedPart{}, NewEncodingError(name, err)
	}
	return EncodedPart{
		Name:      name,
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(data),
	}, nil
}

// EncodeDocument encodes a single in-memory document.
func EncodeDocument(doc domain.InputDocument) (EncodedPart, error) {
	return EncodeReader(doc.Name, doc.MediaType, bytes.NewReader(doc.Data))
}

// EncodeDocuments encodes docs concurrently and returns the parts in input
// order. Documents that fail to encode are left out and reported in the
// second return value; they never fail the batch.
func EncodeDocuments(ctx context.Context, docs []domain.InputDocument, concurrency int) ([]EncodedPart, []error) {
	if concurrency <= 0 {
		concurrency = DefaultEncodeConcurrency
	}

	parts := make([]EncodedPart, len(docs))
	errs := make([]error, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = NewEncodingError(docs[i].Name, err)
				return nil
			}
			parts[i], errs[i] = EncodeDocument(docs[i])
			return nil
		})
	}
	_ = g.Wait()

	out := make([]EncodedPart, 0, len(docs))
	var failed []error
	for i := range docs {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		out = append(out, parts[i])
	}
	return out, failed
}

// IsQualifying reports whether a media type can be sent for analysis:
// any image/* type or application/pdf. Parameters and case are ignored.
func IsQualifying(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	if mt == MediaTypePDF {
		return true
	}
	return strings.HasPrefix(mt, "image/") && len(mt) > len("image/")
}

// FilterQualifying drops documents whose media type does not qualify,
// preserving the order of the rest.
func FilterQualifying(docs []domain.InputDocument) []domain.InputDocument {
	out := make([]domain.InputDocument, 0, len(docs))
	for _, d := range docs {
		if IsQualifying(d.MediaType) {
			out = append(out, d)
		}
	}
	return out
}
