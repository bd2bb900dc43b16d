package wikichars

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrBadIndexLine is returned for an index line that isn't
// offset:id:title.
var ErrBadIndexLine = errors.New("bad index line")

// An IndexEntry is an individual article from the index.
type IndexEntry struct {
	StreamOffset int64
	PageID       uint64
	Title        string
}

func (i IndexEntry) String() string {
	return fmt.Sprintf("%v:%v:%v",
		i.StreamOffset, i.PageID, i.Title)
}

// An IndexReader is a wikipedia multistream index reader.
type IndexReader struct {
	r          *bufio.Scanner
	base       int64
	prevOffset int64
}

// Next gets the next entry from the index stream.
//
// Older indexes wrote offsets as 32 bit signed numbers.  An offset
// smaller than the last one is taken to have wrapped around.
func (ir *IndexReader) Next() (IndexEntry, error) {
	if !ir.r.Scan() {
		err := ir.r.Err()
		if err == nil {
			err = io.EOF
		}
		return IndexEntry{}, err
	}
	line := ir.r.Text()
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 {
		return IndexEntry{}, fmt.Errorf("%w: %q", ErrBadIndexLine, line)
	}
	rv := IndexEntry{Title: parts[2]}
	offset, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("%w: offset %q: %v", ErrBadIndexLine, parts[0], err)
	}
	if offset < ir.prevOffset {
		ir.base += (1 << 32)
	}
	rv.StreamOffset = offset + ir.base
	rv.PageID, err = strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("%w: id %q: %v", ErrBadIndexLine, parts[1], err)
	}
	ir.prevOffset = offset

	return rv, nil
}

// NewIndexReader gets a wikipedia index reader.
func NewIndexReader(r io.Reader) *IndexReader {
	return &IndexReader{r: bufio.NewScanner(r)}
}

// An IndexChunk is one compressed stream of a multistream dump: where
// it starts and which pages it holds.
type IndexChunk struct {
	Offset  int64
	Count   int
	FirstID uint64
	LastID  uint64
}

// A ChunkReader groups index entries by stream.
type ChunkReader struct {
	index   *IndexReader
	pending *IndexEntry
}

// NewChunkReader gets a ChunkReader over the given stream of index
// lines.
func NewChunkReader(r io.Reader) *ChunkReader {
	return &ChunkReader{index: NewIndexReader(r)}
}

// Next gets the next stream's chunk.  io.EOF means there are no more.
func (cr *ChunkReader) Next() (IndexChunk, error) {
	if cr.pending == nil {
		e, err := cr.index.Next()
		if err != nil {
			return IndexChunk{}, err
		}
		cr.pending = &e
	}

	rv := IndexChunk{
		Offset:  cr.pending.StreamOffset,
		Count:   1,
		FirstID: cr.pending.PageID,
		LastID:  cr.pending.PageID,
	}
	cr.pending = nil
	for {
		e, err := cr.index.Next()
		if err == io.EOF {
			return rv, nil
		}
		if err != nil {
			return IndexChunk{}, err
		}
		if e.StreamOffset != rv.Offset {
			cr.pending = &e
			return rv, nil
		}
		rv.Count++
		rv.LastID = e.PageID
	}
}
