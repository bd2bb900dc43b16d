package wikichars

import (
	"errors"
	"io"
	"strings"
	"testing"
)

const testIndex = `499:10:ひだまりスケッチ
499:12:Anarchism
499:13:ToHeart2の登場人物
499:14:AfghanistanGeography
499:15:AfghanistanPeople
499:18:涼宮ハルヒの憂鬱
499:19:AfghanistanTransportations
499:20:AfghanistanMilitary
499:21:AfghanistanTransnationalIssues
499:23:AssistiveTechnology
2147418907:2638569:William Earl Brown
2147418907:2638570:Lebuhraya Persekutuan
2147418907:2638571:St Francis of Paola
2147418907:2638573:Francesco di Paula
2147418907:2638575:Arapahoe Community College
2147418907:2638583:Francesco Borgia
-2147469295:2638585:Philadelphia Bulletin
-2147469295:2638588:Zrínyi Miklós
-2147469295:2638602:Privatize
-2147469295:2638604:Island of Montréal: Part 2
`

const lastChunk = 2147498001

func TestIndexReader(t *testing.T) {
	ir := NewIndexReader(strings.NewReader(testIndex))

	e, err := ir.Next()
	if err != nil {
		t.Fatalf("Error parsing first entry: %v", err)
	}
	if e.String() != "499:10:ひだまりスケッチ" {
		t.Errorf("Error stringing first entry, got %v", e)
	}

	for {
		var tmp IndexEntry
		tmp, err = ir.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Error reading stream:  %v", err)
		}
		e = tmp
	}
	if e.StreamOffset != lastChunk {
		t.Fatalf("Expected %v, got %v for the last chunk offset",
			int64(lastChunk), e.StreamOffset)
	}
	if e.PageID != 2638604 {
		t.Errorf("Expected page id 2638604, got %v", e.PageID)
	}
	if e.Title != "Island of Montréal: Part 2" {
		t.Errorf("Expected colon in title to survive, got %q", e.Title)
	}
}

func TestIndexReaderBadLines(t *testing.T) {
	tests := []string{
		"499",
		"499:10",
		"x:10:Title",
		"499:ten:Title",
	}

	for _, line := range tests {
		ir := NewIndexReader(strings.NewReader(line + "\n"))
		_, err := ir.Next()
		if !errors.Is(err, ErrBadIndexLine) {
			t.Errorf("Expected ErrBadIndexLine for %q, got %v", line, err)
		}
	}
}

func TestChunkReader(t *testing.T) {
	cr := NewChunkReader(strings.NewReader(testIndex))

	expected := []IndexChunk{
		{499, 10, 10, 23},
		{2147418907, 6, 2638569, 2638583},
		{lastChunk, 4, 2638585, 2638604},
	}

	for _, exp := range expected {
		c, err := cr.Next()
		if err != nil {
			t.Fatalf("Error reading chunk: %v", err)
		}
		if c != exp {
			t.Fatalf("Expected %+v, got %+v", exp, c)
		}
	}

	for i := 0; i < 2; i++ {
		if _, err := cr.Next(); err != io.EOF {
			t.Fatalf("Expected EOF after the last chunk, got %v", err)
		}
	}
}

func TestChunkReaderEmpty(t *testing.T) {
	_, err := NewChunkReader(strings.NewReader("")).Next()
	if err != io.EOF {
		t.Fatalf("Expected EOF on an empty index, got %v", err)
	}
}

func TestChunkReaderBadLine(t *testing.T) {
	cr := NewChunkReader(strings.NewReader("499:10:A\n499:x:B\n"))
	_, err := cr.Next()
	if !errors.Is(err, ErrBadIndexLine) {
		t.Fatalf("Expected ErrBadIndexLine, got %v", err)
	}
}
