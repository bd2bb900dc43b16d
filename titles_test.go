package wikichars

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCanonicalizer(p Profile) *Canonicalizer {
	return NewCanonicalizer(p, NewNormalizer(DefaultRules(), nil, nil))
}

func TestCanonicalize(t *testing.T) {
	c := testCanonicalizer(Japanese)

	tests := []struct {
		in  []string
		exp []string
	}{
		{[]string{"Foo (TV series)", "Foo|bar"}, []string{"Foo"}},
		{[]string{"B", "A", "B", " A "}, []string{"A", "B"}},
		{[]string{"|foo", "(注)", "（注）", "【注】", ""}, []string{}},
		{[]string{"ひだまりスケッチ<br />ひだまりスケッチ×365"},
			[]string{"ひだまりスケッチ", "ひだまりスケッチ×365"}},
		{[]string{"劇場版<BR>Foo"}, []string{"Foo"}},
		{[]string{"Foo<br>※注釈"}, []string{"Foo"}},
		{[]string{"Foo<br/>(2004)"}, []string{"Foo"}},
		{[]string{"Foo<br>新装版"}, []string{"Foo"}},
		{[]string{"Foo<br>2004-2005: 第1期"}, []string{"Foo"}},
		{[]string{"映画 ドラえもん"}, []string{"ドラえもん"}},
		{[]string{"映画：ドラえもん"}, []string{"ドラえもん"}},
		{[]string{"作品【漫画】"}, []string{"作品"}},
		{[]string{"〔注〕作品"}, []string{"作品"}},
		{[]string{"[[ドラえもん]]"}, []string{"ドラえもん"}},
		{[]string{"[[ドラえもん|ドラ]]"}, []string{"ドラ"}},
		{[]string{"{{Ruby|猫|ねこ}}の話"}, []string{"猫の話"}},
		{[]string{"<small>小さい</small>題名"}, []string{"小さい題名"}},
		{[]string{"か\u3099っこう"}, []string{"がっこう"}},
	}

	for _, test := range tests {
		assert.Equal(t, test.exp, c.Canonicalize(test.in), "canonicalizing %q", test.in)
	}
}

func TestCanonicalizeRoundTrip(t *testing.T) {
	c := testCanonicalizer(Japanese)

	inputs := [][]string{
		{"Foo (TV series)", "Foo|bar"},
		{"ひだまりスケッチ<br />ひだまりスケッチ×365", "ひだまりスケッチ"},
		{"{{Ruby|猫|ねこ}}の話", "映画 ドラえもん", "[[ドラえもん]]"},
		{"a{{!}}b"},
	}

	for _, in := range inputs {
		once := c.Canonicalize(in)
		assert.Equal(t, once, c.Canonicalize(once), "canonicalizing %q twice", in)
	}
}

func TestCanonicalizeWithoutNormalizer(t *testing.T) {
	c := NewCanonicalizer(Chinese, nil)
	assert.Equal(t, []string{"作品"}, c.Canonicalize([]string{"作品（動畫）"}))
}
