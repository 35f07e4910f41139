// Package sources collects statement documents from local paths and Cloud
// Storage URIs.
package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dvloznov/statement-insights/internal/domain"
	"github.com/dvloznov/statement-insights/internal/pipeline"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNoObjectStore is returned for gs:// inputs when the loader has no
// object store configured.
var ErrNoObjectStore = errors.New("no object store configured for gs:// inputs")

// Loader turns input locations into InputDocuments.
type Loader struct {
	store       ObjectStore
	concurrency int
	log         zerolog.Logger
}

// NewLoader creates a loader. store may be nil when only local paths are
// used.
func NewLoader(store ObjectStore, concurrency int, log zerolog.Logger) *Loader {
	if concurrency <= 0 {
		concurrency = pipeline.DefaultEncodeConcurrency
	}
	return &Loader{
		store:       store,
		concurrency: concurrency,
		log:         log.With().Str("component", "sources").Logger(),
	}
}

// target is one concrete file or object to read.
type target struct {
	name   string
	path   string
	bucket string
	object string
}

// Load reads every input in order. A local directory or a gs:// prefix
// expands to its entries in name order. Inputs that cannot be read are
// reported as *pipeline.EncodingError and left out; they never fail the
// batch.
func (l *Loader) Load(ctx context.Context, inputs []string) ([]domain.InputDocument, []error) {
	var (
		targets []target
		failed  []error
	)

	for _, in := range inputs {
		expanded, err := l.expand(ctx, in)
		if err != nil {
			failed = append(failed, pipeline.NewEncodingError(in, err))
			continue
		}
		targets = append(targets, expanded...)
	}

	docs := make([]domain.InputDocument, len(targets))
	errs := make([]error, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i := range targets {
		g.Go(func() error {
			doc, err := l.read(gctx, targets[i])
			if err != nil {
				errs[i] = pipeline.NewEncodingError(targets[i].name, err)
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.InputDocument, 0, len(targets))
	for i := range targets {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		out = append(out, docs[i])
	}

	for _, err := range failed {
		l.log.Warn().Err(err).Msg("Source skipped")
	}
	l.log.Debug().Int("inputs", len(inputs)).Int("loaded", len(out)).Msg("Sources loaded")

	return out, failed
}

func (l *Loader) expand(ctx context.Context, in string) ([]target, error) {
	if IsGCSURI(in) {
		if l.store == nil {
			return nil, ErrNoObjectStore
		}
		bucket, object, err := ParseGCSURI(in)
		if err != nil {
			return nil, err
		}
		if !IsPrefixURI(in) {
			return []target{{name: ExtractFilenameFromGCSURI(in), bucket: bucket, object: object}}, nil
		}

		names, err := l.store.ListObjects(ctx, bucket, object)
		if err != nil {
			return nil, err
		}
		out := make([]target, 0, len(names))
		for _, name := range names {
			out = append(out, target{name: filepath.Base(name), bucket: bucket, object: name})
		}
		return out, nil
	}

	info, err := os.Stat(in)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []target{{name: filepath.Base(in), path: in}}, nil
	}

	entries, err := os.ReadDir(in)
	if err != nil {
		return nil, fmt.Errorf("expand: read dir %q: %w", in, err)
	}
	var out []target
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, target{name: e.Name(), path: filepath.Join(in, e.Name())})
	}
	return out, nil
}

func (l *Loader) read(ctx context.Context, t target) (domain.InputDocument, error) {
	if err := ctx.Err(); err != nil {
		return domain.InputDocument{}, err
	}

	if t.path != "" {
		data, err := os.ReadFile(t.path)
		if err != nil {
			return domain.InputDocument{}, err
		}
		return domain.InputDocument{Name: t.name, MediaType: DetectMediaType("", data), Data: data}, nil
	}

	data, contentType, err := l.store.ReadObject(ctx, t.bucket, t.object)
	if err != nil {
		return domain.InputDocument{}, err
	}
	return domain.InputDocument{Name: t.name, MediaType: DetectMediaType(contentType, data), Data: data}, nil
}
