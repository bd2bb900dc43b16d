package wikichars

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// A RecordWriter serializes records.  Close finishes the output but
// leaves the underlying writer open.
type RecordWriter interface {
	Write(*Record) error
	Close() error
}

func newEncoder(w io.Writer, indent string) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent(indent, indent)
	}
	return enc
}

type jsonLinesWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLinesWriter gets a writer emitting one record per line.
func NewJSONLinesWriter(w io.Writer) RecordWriter {
	bw := bufio.NewWriter(w)
	return &jsonLinesWriter{w: bw, enc: newEncoder(bw, "")}
}

func (j *jsonLinesWriter) Write(r *Record) error {
	return j.enc.Encode(r)
}

func (j *jsonLinesWriter) Close() error {
	return j.w.Flush()
}

type jsonArrayWriter struct {
	w   *bufio.Writer
	buf bytes.Buffer
	enc *json.Encoder
	n   int
}

// NewJSONArrayWriter gets a writer emitting a single indented JSON
// array of records.  Records are streamed out as they're written.
func NewJSONArrayWriter(w io.Writer) RecordWriter {
	a := &jsonArrayWriter{w: bufio.NewWriter(w)}
	a.enc = newEncoder(&a.buf, "    ")
	return a
}

func (a *jsonArrayWriter) Write(r *Record) error {
	a.buf.Reset()
	if err := a.enc.Encode(r); err != nil {
		return err
	}
	sep := ",\n    "
	if a.n == 0 {
		sep = "[\n    "
	}
	a.n++
	if _, err := a.w.WriteString(sep); err != nil {
		return err
	}
	_, err := a.w.Write(bytes.TrimRight(a.buf.Bytes(), "\n"))
	return err
}

func (a *jsonArrayWriter) Close() error {
	end := "\n]\n"
	if a.n == 0 {
		end = "[]\n"
	}
	if _, err := a.w.WriteString(end); err != nil {
		return err
	}
	return a.w.Flush()
}

// NewRecordWriter gets a writer for the named format, "json" or
// "jsonl".
func NewRecordWriter(format string, w io.Writer) (RecordWriter, error) {
	switch format {
	case "json":
		return NewJSONArrayWriter(w), nil
	case "jsonl":
		return NewJSONLinesWriter(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// A RecordReader reads back records written by either RecordWriter.
type RecordReader struct {
	br    *bufio.Reader
	dec   *json.Decoder
	array bool
}

// NewRecordReader gets a RecordReader over r.  Whether r holds an
// array or one record per line is worked out from its first byte.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{br: bufio.NewReader(r)}
}

func (rr *RecordReader) start() error {
	for {
		b, err := rr.br.Peek(1)
		if err != nil {
			return err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			rr.br.ReadByte()
			continue
		case '[':
			rr.array = true
		}
		rr.dec = json.NewDecoder(rr.br)
		if rr.array {
			if _, err := rr.dec.Token(); err != nil {
				return err
			}
		}
		return nil
	}
}

// Next gets the next record, or io.EOF.
func (rr *RecordReader) Next() (*Record, error) {
	if rr.dec == nil {
		if err := rr.start(); err != nil {
			return nil, err
		}
	}
	if rr.array && !rr.dec.More() {
		return nil, io.EOF
	}
	rec := &Record{}
	if err := rr.dec.Decode(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SiteInfo is unknown for extracted records.
func (rr *RecordReader) SiteInfo() SiteInfo {
	return SiteInfo{}
}

// WriteTemplateStats writes the unresolved template table as a JSON
// object of name to count.
func WriteTemplateStats(w io.Writer, t *TemplateStats) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(t.Snapshot())
}

// LoadTemplateStats reads a table written by WriteTemplateStats.
func LoadTemplateStats(r io.Reader) (*TemplateStats, error) {
	counts := map[string]int64{}
	if err := json.NewDecoder(r).Decode(&counts); err != nil {
		return nil, fmt.Errorf("decoding template table: %w", err)
	}
	t := NewTemplateStats()
	t.Merge(counts)
	return t, nil
}
