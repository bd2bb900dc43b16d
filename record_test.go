package wikichars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder(p Profile) *Builder {
	return NewBuilder(p, NewNormalizer(DefaultRules(), nil, nil))
}

const hidamari = `{{Infobox animanga/Header
|タイトル=ひだまりスケッチ<br />ひだまりスケッチ×365
}}
『'''ひだまりスケッチ'''』は漫画作品。
==登場人物==
;[[ゆの]]
:主人公。{{Sfn|蒼樹|2004}}
:美術科。
;宮子（みやこ）
:{{Ruby|隣人|となりびと}}。
==脚注==
{{Reflist}}
`

func TestBuildEmbeddedSection(t *testing.T) {
	b := testBuilder(Japanese)

	rec := b.Build(&Page{ID: 1, Title: "ひだまりスケッチ", Text: hidamari})
	require.NotNil(t, rec)

	assert.Equal(t, uint64(1), rec.ID)
	assert.Equal(t, []string{"ひだまりスケッチ", "ひだまりスケッチ×365"}, rec.Titles)
	assert.Equal(t, map[string]string{
		"ゆの":      "主人公。\n美術科。",
		"宮子（みやこ）": "隣人(となりびと)。",
	}, rec.Characters)
}

func TestBuildListArticle(t *testing.T) {
	b := testBuilder(Japanese)

	rec := b.Build(&Page{
		ID:    2,
		Title: "ToHeart2の登場人物",
		Text:  "主要人物。\n;河野貴明\n:主人公。\n;小牧愛佳\n:委員長。\n",
	})
	require.NotNil(t, rec)
	assert.Equal(t, []string{"ToHeart2"}, rec.Titles)
	assert.Equal(t, map[string]string{
		"河野貴明": "主人公。",
		"小牧愛佳": "委員長。",
	}, rec.Characters)
}

func TestBuildChinese(t *testing.T) {
	b := testBuilder(Chinese)

	rec := b.Build(&Page{
		ID:    3,
		Title: "某作品角色列表",
		Text:  "{{Infobox\n|標題=某作品\n|標題=電視動畫\n}}\n;甲\n:描述一\n:描述二\n",
	})
	require.NotNil(t, rec)
	assert.Equal(t, []string{"某作品"}, rec.Titles)
	assert.Equal(t, map[string]string{"甲": "描述一描述二"}, rec.Characters)
}

func TestBuildTitles(t *testing.T) {
	b := testBuilder(Japanese)

	text := "{{Infobox\n| 番組名 = [[ドラえもん (1979年のテレビアニメ)|ドラえもん]]\n" +
		"|タイトル=関連項目\n}}\n==登場人物==\n;のび太\n:主人公。\n"
	rec := b.Build(&Page{ID: 4, Title: "ドラえもん (1979年のテレビアニメ)", Text: text})
	require.NotNil(t, rec)
	assert.Equal(t, []string{"ドラえもん"}, rec.Titles)
}

func TestBuildTitleFallback(t *testing.T) {
	b := testBuilder(Japanese)

	rec := b.Build(&Page{ID: 5, Title: "（仮題）", Text: "==登場人物==\n;A\n:a\n"})
	require.NotNil(t, rec)
	assert.Equal(t, []string{"（仮題）"}, rec.Titles)
}

func TestBuildDropped(t *testing.T) {
	b := testBuilder(Japanese)

	tests := []Page{
		{ID: 1, Title: "無関係", Text: "登場人物のない記事。"},
		{ID: 2, Title: "スタブ", Text: "==登場人物==\n{{Main|スタブの登場人物}}\n"},
		{ID: 3, Title: "空", Text: "==登場人物==\n本文だけ。\n"},
		{ID: 4, Title: "Xの登場人物", Text: "一覧はまだない。"},
		{ID: 5, Title: "注だけ", Text: "==登場人物==\n;{{Sfn|x}}\n:a\n"},
	}

	for _, p := range tests {
		assert.Nil(t, b.Build(&p), "building %q", p.Title)
	}
}

func TestBuildDropsEmptyKeys(t *testing.T) {
	b := testBuilder(Japanese)

	rec := b.Build(&Page{ID: 6, Title: "T", Text: "==登場人物==\n;{{Sfn|x}}\n:a\n;B\n:b\n"})
	require.NotNil(t, rec)
	assert.Equal(t, map[string]string{"B": "b"}, rec.Characters)
}

func TestBuildLaterKeyWins(t *testing.T) {
	b := testBuilder(Japanese)

	rec := b.Build(&Page{ID: 7, Title: "T", Text: "==登場人物==\n;[[A]]\n:一\n;A\n:二\n"})
	require.NotNil(t, rec)
	assert.Equal(t, map[string]string{"A": "二"}, rec.Characters)
}
