package wikichars

import (
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// Both the index and every stream of the data file are bzip2.
var decompress = func(r io.Reader) io.Reader {
	return bzip2.NewReader(r)
}

// A MultiStreamParser extracts records from a multistream dump with a
// pool of workers, each decoding one stream at a time.
//
// Records come out in no particular order.
type MultiStreamParser struct {
	siteInfo SiteInfo

	entries chan *Record
	cancel  context.CancelFunc
	err     error
}

func multiStreamIndexWorker(ctx context.Context, indexfn string,
	workerch chan<- IndexChunk) error {
	defer close(workerch)

	r, err := os.Open(indexfn)
	if err != nil {
		return fmt.Errorf("opening %v: %w", indexfn, err)
	}
	defer r.Close()

	cr := NewChunkReader(decompress(r))
	for {
		chunk, err := cr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading index: %w", err)
		}
		select {
		case workerch <- chunk:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func multiStreamWorker(ctx context.Context, datafn string, cfg Config,
	workerch <-chan IndexChunk, entries chan<- *Record) error {

	r, err := os.Open(datafn)
	if err != nil {
		return fmt.Errorf("opening %v: %w", datafn, err)
	}
	defer r.Close()

	b := cfg.builder()
	for chunk := range workerch {
		if _, err := r.Seek(chunk.Offset, io.SeekStart); err != nil {
			return fmt.Errorf("seeking to %v: %w", chunk.Offset, err)
		}
		x := newExtractor(NewXMLEvents(decompress(r)), cfg, b, chunk.Count)

		for {
			rec, err := x.Next()
			if err == io.EOF {
				break
			}
			var dup *DuplicateIDError
			if errors.As(err, &dup) {
				return err
			}
			if err != nil {
				// A broken stream costs its own articles, not the run.
				cfg.Logger.Printf("Error reading stream at %v (pages %v-%v): %v",
					chunk.Offset, chunk.FirstID, chunk.LastID, err)
				break
			}
			select {
			case entries <- rec:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

func readSiteInfo(datafn string) (SiteInfo, error) {
	r, err := os.Open(datafn)
	if err != nil {
		return SiteInfo{}, err
	}
	defer r.Close()

	x := NewXMLEvents(decompress(r))
	for x.SiteInfo().SiteName == "" {
		ev, err := x.NextEvent()
		if err == io.EOF {
			break
		}
		if err != nil {
			return SiteInfo{}, err
		}
		if ev.Kind == Enter && ev.Name == "page" {
			break
		}
	}
	return x.SiteInfo(), nil
}

// NewIndexedParser gets a parser extracting records from a multistream
// dump and its index using numWorkers workers.
//
// All workers share cfg's id set, so a duplicate id anywhere in the
// dump stops the run.  It's reported by Next once the records already
// extracted have been consumed.
func NewIndexedParser(indexfn, datafn string, numWorkers int,
	cfg Config) (*MultiStreamParser, error) {

	si, err := readSiteInfo(datafn)
	if err != nil {
		return nil, err
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	cfg = cfg.withDefaults()

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	rv := &MultiStreamParser{
		siteInfo: si,
		entries:  make(chan *Record, 1000),
		cancel:   cancel,
	}
	workerch := make(chan IndexChunk, 1000)

	g.Go(func() error {
		return multiStreamIndexWorker(ctx, indexfn, workerch)
	})
	for i := 0; i < numWorkers; i++ {
		g.Go(func() error {
			return multiStreamWorker(ctx, datafn, cfg, workerch, rv.entries)
		})
	}

	go func() {
		rv.err = g.Wait()
		close(rv.entries)
	}()

	return rv, nil
}

// Next gets the next record from any of the workers.
func (p *MultiStreamParser) Next() (*Record, error) {
	rec, ok := <-p.entries
	if !ok {
		if p.err != nil {
			return nil, p.err
		}
		return nil, io.EOF
	}
	return rec, nil
}

// SiteInfo returns the site info from the head of the dump.
func (p *MultiStreamParser) SiteInfo() SiteInfo {
	return p.siteInfo
}

// Close stops the workers and waits for them to finish.
func (p *MultiStreamParser) Close() error {
	p.cancel()
	for range p.entries {
	}
	return nil
}
