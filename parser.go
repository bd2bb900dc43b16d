package wikichars

import (
	"compress/bzip2"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// That which emits character list records.
type RecordSource interface {
	// Get the next record.  io.EOF means there are no more.
	Next() (*Record, error)
	// The toplevel site info of the dump, if known.
	SiteInfo() SiteInfo
}

// Config is what an extraction run shares among its parsers.
//
// Any nil field gets a default: the Japanese profile (when Profile is
// zero), the built in rule table, fresh counters and the standard
// logger.
type Config struct {
	Profile Profile
	Rules   *RuleTable
	Stats   *TemplateStats
	IDs     *IDSet
	Logger  *log.Logger
	// OnSkip, if set, is told about every article skipped for being
	// malformed.
	OnSkip func(*Page, error)
}

// NewConfig gets a Config for the named profile, with the built in
// rule table extended by rulesFile if it's not empty.
func NewConfig(profile, rulesFile string) (Config, error) {
	p, err := ProfileByName(profile)
	if err != nil {
		return Config{}, err
	}
	rules := DefaultRules()
	if rulesFile != "" {
		rules, err = LoadRulesFile(rulesFile, rules)
		if err != nil {
			return Config{}, fmt.Errorf("loading %v: %w", rulesFile, err)
		}
	}
	return Config{Profile: p, Rules: rules}.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Profile.Name == "" {
		c.Profile = Japanese
	}
	if c.Rules == nil {
		c.Rules = DefaultRules()
	}
	if c.Stats == nil {
		c.Stats = NewTemplateStats()
	}
	if c.IDs == nil {
		c.IDs = NewIDSet()
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

func (c Config) builder() *Builder {
	return NewBuilder(c.Profile, NewNormalizer(c.Rules, c.Stats, c.Logger))
}

func newExtractor(src EventSource, cfg Config, b *Builder, maxPages int) *Extractor {
	return &Extractor{
		src:      src,
		builder:  b,
		ids:      cfg.IDs,
		log:      cfg.Logger,
		onSkip:   cfg.OnSkip,
		maxPages: maxPages,
	}
}

// NewExtractor gets an extractor reading from the given event source.
func NewExtractor(src EventSource, cfg Config) *Extractor {
	cfg = cfg.withDefaults()
	return newExtractor(src, cfg, cfg.builder(), 0)
}

// Get a character list parser reading dump xml from the given reader.
func NewParser(r io.Reader, cfg Config) *Extractor {
	return NewExtractor(NewXMLEvents(r), cfg)
}

// OpenDump gets a parser over the named dump, decompressing it if the
// name ends in .bz2.  Close the returned closer when done.
func OpenDump(filename string, cfg Config) (*Extractor, io.Closer, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	var r io.Reader = f
	if strings.HasSuffix(filename, ".bz2") {
		r = bzip2.NewReader(f)
	}
	return NewParser(r, cfg), f, nil
}

// OpenSource picks a record source for the given paths.
//
// A single .json or .jsonl path is read back as previously extracted
// records.  A single dump path is parsed sequentially.  A multistream
// index followed by its dump is parsed by workers in parallel.
func OpenSource(paths []string, workers int, cfg Config) (RecordSource, io.Closer, error) {
	switch {
	case len(paths) == 1 && (strings.HasSuffix(paths[0], ".json") ||
		strings.HasSuffix(paths[0], ".jsonl")):
		f, err := os.Open(paths[0])
		if err != nil {
			return nil, nil, err
		}
		return NewRecordReader(f), f, nil
	case len(paths) == 1:
		x, c, err := OpenDump(paths[0], cfg)
		if err != nil {
			return nil, nil, err
		}
		return x, c, nil
	case len(paths) == 2:
		p, err := NewIndexedParser(paths[0], paths[1], workers, cfg)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	}
	return nil, nil, fmt.Errorf("want a dump, or an index and a dump; got %d paths",
		len(paths))
}
