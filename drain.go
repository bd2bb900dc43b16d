package wikichars

import (
	"io"
	"log"
	"time"

	"github.com/dustin/go-humanize"
)

// Drain pulls every record from src and hands it to fn, logging
// progress every reportEvery records (never, if it's not positive).
//
// It stops at the first error from either side and returns it along
// with the number of records handled.  Running out of records isn't
// an error.
func Drain(src RecordSource, reportEvery int64, logger *log.Logger,
	fn func(*Record) error) (int64, error) {

	if logger == nil {
		logger = log.Default()
	}

	records := int64(0)
	start := time.Now()
	prev := start
	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, err
		}
		if err := fn(rec); err != nil {
			return records, err
		}

		records++
		if reportEvery > 0 && records%reportEvery == 0 {
			now := time.Now()
			d := now.Sub(prev)
			logger.Printf("Processed %s records total (%.2f/s)",
				humanize.Comma(records), float64(reportEvery)/d.Seconds())
			prev = now
		}
	}

	d := time.Since(start)
	logger.Printf("Finished %s records in %v (%.2f/s)",
		humanize.Comma(records), d, float64(records)/d.Seconds())
	return records, nil
}
