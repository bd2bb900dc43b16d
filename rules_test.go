package wikichars

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name string
		kind TemplateKind
	}{
		{"Sfn", Drop},
		{"efn2", Drop},
		{"仮リンク", Surface},
		{"Ruby", Furigana},
		{"読み仮名 ruby不使用", Furigana},
		{"!", Pipe},
		{"JIS2004フォント", DecodeRefs},
		{"lang", LangText},
		{"Harvnb ", Quote},
		{"ruby", Furigana},
		{"RUBY", Unresolved},
		{"Infobox", Unresolved},
	}

	for _, test := range tests {
		assert.Equal(t, test.kind, rules.Lookup(test.name).Kind,
			"looking up %q", test.name)
	}
}

func TestTemplateKindNames(t *testing.T) {
	for i := range kindNames {
		k := TemplateKind(i)
		got, err := ParseTemplateKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	_, err := ParseTemplateKind("bogus")
	assert.True(t, errors.Is(err, ErrUnknownKind))
	assert.Equal(t, "TemplateKind(99)", TemplateKind(99).String())
}

func TestRuleTableWith(t *testing.T) {
	base := NewRuleTable(map[string]Rule{
		"a": {Kind: Drop},
		"b": {Kind: Pipe},
	})
	next := base.With(map[string]Rule{
		"a": {Kind: Unresolved},
		"c": {Kind: Surface, Param: 2},
	})

	assert.Equal(t, 2, base.Len())
	assert.Equal(t, Drop, base.Lookup("a").Kind)

	assert.Equal(t, 2, next.Len())
	assert.Equal(t, Unresolved, next.Lookup("a").Kind)
	assert.Equal(t, Rule{Kind: Surface, Param: 2}, next.Lookup("c"))
}

const testRules = `
rules:
  - kind: furigana
    names: [ふりがな]
  - kind: surface
    param: 2
    names: [Nihongo, nihongo]
  - kind: unresolved
    names: [Harvnb]
`

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules(strings.NewReader(testRules), DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, Furigana, rules.Lookup("ふりがな").Kind)
	assert.Equal(t, Rule{Kind: Surface, Param: 2}, rules.Lookup("nihongo"))
	assert.Equal(t, Unresolved, rules.Lookup("Harvnb").Kind)
	assert.Equal(t, Quote, rules.Lookup("Harvnb ").Kind)

	n := NewNormalizer(rules, nil, nil)
	assert.Equal(t, "Tokyo", n.Normalize("{{Nihongo|東京|Tokyo}}"))
	assert.Equal(t, "猫(ねこ)", n.Normalize("{{ふりがな|猫|ねこ}}"))
}

func TestLoadRulesEmpty(t *testing.T) {
	rules, err := LoadRules(strings.NewReader(""), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rules.Len())
}

func TestLoadRulesErrors(t *testing.T) {
	tests := []struct {
		in  string
		err error
	}{
		{"rules:\n  - kind: nope\n    names: [x]\n", ErrUnknownKind},
		{"rules:\n  - kind: drop\n", ErrNoNames},
		{"rules:\n  - kind: surface\n    names: [x]\n", ErrBadParam},
	}

	for _, test := range tests {
		_, err := LoadRules(strings.NewReader(test.in), nil)
		assert.True(t, errors.Is(err, test.err), "loading %q: got %v", test.in, err)
	}
}

func TestLoadRulesFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(testRules), 0644))

	rules, err := LoadRulesFile(fn, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, rules.Len())

	_, err = LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
