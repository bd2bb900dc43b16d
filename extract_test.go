package wikichars

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSiteInfo = `<siteinfo>
    <sitename>ウィキペディア</sitename>
    <dbname>jawiki</dbname>
    <base>https://ja.wikipedia.org/wiki/</base>
    <generator>MediaWiki 1.41</generator>
    <case>first-letter</case>
    <namespaces>
      <namespace key="0" case="first-letter" />
      <namespace key="14" case="first-letter">Category</namespace>
    </namespaces>
  </siteinfo>
`

func pageXML(id, title, text string) string {
	return fmt.Sprintf(`  <page>
    <title>%s</title>
    <ns>0</ns>
    <id>%s</id>
    <revision>
      <id>9%s</id>
      <contributor><username>someone</username><id>77</id></contributor>
      <text bytes="1" xml:space="preserve">%s</text>
    </revision>
  </page>
`, html.EscapeString(title), id, id, html.EscapeString(text))
}

func dumpXML(pages ...string) string {
	return `<mediawiki xmlns="http://www.mediawiki.org/xml/export-0.10/" xml:lang="ja">
  ` + testSiteInfo + strings.Join(pages, "") + "</mediawiki>\n"
}

const charsBody = "==登場人物==\n;アリス\n:主人公。\n"

func quietConfig() (Config, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return Config{Logger: log.New(buf, "", 0)}, buf
}

func readAll(t *testing.T, src RecordSource) ([]*Record, error) {
	t.Helper()
	var rv []*Record
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return rv, nil
		}
		if err != nil {
			return rv, err
		}
		rv = append(rv, rec)
	}
}

func TestXMLEvents(t *testing.T) {
	x := NewXMLEvents(strings.NewReader(dumpXML(pageXML("1", "T", "body"))))

	var names []string
	for {
		ev, err := x.NextEvent()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.NotEqual(t, "siteinfo", ev.Name)
		assert.NotEqual(t, "sitename", ev.Name)
		if ev.Kind != Text {
			names = append(names, ev.Kind.String()+":"+ev.Name)
		} else if ev.Name == "text" {
			assert.Equal(t, "body", ev.Text)
		}
	}

	assert.Equal(t, "enter:mediawiki", names[0])
	assert.Equal(t, "enter:page", names[1])
	assert.Equal(t, "exit:mediawiki", names[len(names)-1])

	si := x.SiteInfo()
	assert.Equal(t, "ウィキペディア", si.SiteName)
	assert.Equal(t, "jawiki", si.DBName)
	require.Len(t, si.Namespaces, 2)
	assert.Equal(t, "Category", si.Namespaces[1].Value)
}

func TestExtractor(t *testing.T) {
	cfg, _ := quietConfig()
	doc := dumpXML(
		pageXML("10", "作品A", charsBody),
		pageXML("11", "無関係", "登場人物のいない記事。"),
		pageXML("12", "作品Bの登場人物", ";ボブ\n:相棒。{{Sfn|x}}\n"),
	)

	p := NewParser(strings.NewReader(doc), cfg)
	recs, err := readAll(t, p)
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, &Record{
		ID:         10,
		Titles:     []string{"作品A"},
		Characters: map[string]string{"アリス": "主人公。"},
	}, recs[0])
	assert.Equal(t, uint64(12), recs[1].ID)
	assert.Equal(t, []string{"作品B"}, recs[1].Titles)
	assert.Equal(t, map[string]string{"ボブ": "相棒。"}, recs[1].Characters)

	assert.Equal(t, 3, p.Articles())
	assert.Equal(t, "jawiki", p.SiteInfo().DBName)
}

func TestExtractorEscapedMarkup(t *testing.T) {
	cfg, _ := quietConfig()
	body := "==登場人物==\n;アリス<!-- 仮 -->\n:<ref>出典</ref>主人公。\n"

	recs, err := readAll(t, NewParser(strings.NewReader(dumpXML(pageXML("1", "T", body))), cfg))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, map[string]string{"アリス": "主人公。"}, recs[0].Characters)
}

type sliceEvents []Event

func (s *sliceEvents) NextEvent() (Event, error) {
	if len(*s) == 0 {
		return Event{}, io.EOF
	}
	ev := (*s)[0]
	*s = (*s)[1:]
	return ev, nil
}

func textEvents(name string, fragments ...string) []Event {
	rv := []Event{{Kind: Enter, Name: name}}
	for _, f := range fragments {
		rv = append(rv, Event{Kind: Text, Name: name, Text: f})
	}
	return append(rv, Event{Kind: Exit, Name: name})
}

func TestExtractorFragmentedText(t *testing.T) {
	cfg, _ := quietConfig()

	var evs sliceEvents
	evs = append(evs, Event{Kind: Enter, Name: "page"})
	evs = append(evs, textEvents("title", "作品", "A")...)
	evs = append(evs, textEvents("id", "4", "2")...)
	evs = append(evs, Event{Kind: Enter, Name: "revision"})
	evs = append(evs, textEvents("id", "999")...)
	evs = append(evs, textEvents("text", "==登場", "人物==\n;ア", "リス\n:主人", "公。\n")...)
	evs = append(evs, Event{Kind: Exit, Name: "revision"})
	evs = append(evs, Event{Kind: Exit, Name: "page"})

	x := NewExtractor(&evs, cfg)
	recs, err := readAll(t, x)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, uint64(42), recs[0].ID)
	assert.Equal(t, []string{"作品A"}, recs[0].Titles)
	assert.Equal(t, map[string]string{"アリス": "主人公。"}, recs[0].Characters)
	assert.Equal(t, SiteInfo{}, x.SiteInfo())
}

func TestExtractorSkipsMalformed(t *testing.T) {
	cfg, logs := quietConfig()
	var skipped []error
	cfg.OnSkip = func(p *Page, err error) {
		skipped = append(skipped, err)
	}

	doc := dumpXML(
		pageXML("abc", "悪いID", charsBody),
		"  <page><id>5</id><revision><text>"+html.EscapeString(charsBody)+"</text></revision></page>\n",
		"  <page><title>本文なし</title><id>6</id></page>\n",
		pageXML("7", "良い", charsBody),
	)

	p := NewParser(strings.NewReader(doc), cfg)
	recs, err := readAll(t, p)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, uint64(7), recs[0].ID)
	assert.Equal(t, 4, p.Articles())

	require.Len(t, skipped, 3)
	var mal *MalformedIDError
	assert.True(t, errors.As(skipped[0], &mal))
	assert.Equal(t, "abc", mal.Raw)
	assert.True(t, errors.Is(skipped[1], ErrMissingElement))
	assert.True(t, errors.Is(skipped[2], ErrMissingElement))
	assert.Contains(t, logs.String(), "悪いID")
}

func TestExtractorDuplicateID(t *testing.T) {
	cfg, _ := quietConfig()
	doc := dumpXML(
		pageXML("1", "一", charsBody),
		pageXML("2", "二", charsBody),
		pageXML("1", "三", charsBody),
	)

	recs, err := readAll(t, NewParser(strings.NewReader(doc), cfg))
	require.Len(t, recs, 2)
	var dup *DuplicateIDError
	require.True(t, errors.As(err, &dup), "got %v", err)
	assert.Equal(t, uint64(1), dup.ID)
	assert.Equal(t, "三", dup.Title)
}

func TestExtractorSharedIDs(t *testing.T) {
	cfg, _ := quietConfig()
	cfg.IDs = NewIDSet()

	_, err := readAll(t, NewParser(strings.NewReader(dumpXML(pageXML("1", "一", charsBody))), cfg))
	require.NoError(t, err)

	_, err = readAll(t, NewParser(strings.NewReader(dumpXML(pageXML("1", "一", charsBody))), cfg))
	var dup *DuplicateIDError
	assert.True(t, errors.As(err, &dup))
}

func TestExtractorDroppedArticlesDontClaimIDs(t *testing.T) {
	cfg, _ := quietConfig()
	doc := dumpXML(
		pageXML("1", "無関係", "本文。"),
		pageXML("1", "一", charsBody),
	)
	recs, err := readAll(t, NewParser(strings.NewReader(doc), cfg))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestExtractorMaxPages(t *testing.T) {
	cfg, _ := quietConfig()
	cfg = cfg.withDefaults()
	doc := pageXML("1", "一", charsBody) + pageXML("2", "二", charsBody) +
		pageXML("3", "三", charsBody)

	x := newExtractor(NewXMLEvents(strings.NewReader(doc)), cfg, cfg.builder(), 2)
	recs, err := readAll(t, x)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, uint64(2), recs[1].ID)
	assert.Equal(t, 2, x.Articles())
}

func TestExtractorCountsTemplates(t *testing.T) {
	cfg, _ := quietConfig()
	cfg.Stats = NewTemplateStats()
	body := "==登場人物==\n;アリス\n:{{Color|red|主人公}}。{{Color|blue|x}}\n"

	_, err := readAll(t, NewParser(strings.NewReader(dumpXML(pageXML("1", "T", body))), cfg))
	require.NoError(t, err)
	assert.Equal(t, int64(2), cfg.Stats.Count("Color"))
}

func TestExtractorBadXML(t *testing.T) {
	cfg, _ := quietConfig()
	_, err := readAll(t, NewParser(strings.NewReader("<mediawiki><page><title>x</page>"), cfg))
	assert.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}
