package wikichars

import (
	"fmt"
	"sort"
)

// A Profile holds the per-wiki vocabulary the extractor keys on.
type Profile struct {
	Name string
	// Section is the heading label of an embedded character list.
	Section string
	// ListMarkers appear in the title of an article that is, in its
	// entirety, a character list.  The title is cut at the marker.
	ListMarkers []string
	// TitleFields are infobox parameters carrying alternate titles.
	TitleFields []string
	// TitleBlacklist holds title candidates that are never real titles.
	TitleBlacklist []string
	// GenrePrefixes are stripped from the front of a title.
	GenrePrefixes []string
	// EditionSuffix marks a "such-and-such edition" title fragment.
	EditionSuffix string
	// StubPrefixes mark a section that only points elsewhere.
	StubPrefixes []string
	// LineSeparator is appended after each description line.
	LineSeparator string
}

// Japanese is the profile for jawiki dumps.
var Japanese = Profile{
	Name:           "ja",
	Section:        "登場人物",
	ListMarkers:    []string{"の登場人物", "の登場キャラクター一覧"},
	TitleFields:    []string{"タイトル", "番組名"},
	TitleBlacklist: []string{"関連項目"},
	GenrePrefixes:  []string{"映画"},
	EditionSuffix:  "版",
	StubPrefixes:   []string{"{{Main|", "{{main|"},
	LineSeparator:  "\n",
}

// Chinese is the profile for zhwiki dumps.
//
// zhwiki articles mostly borrow the jawiki heading, so the section
// name is the same.  Descriptions are joined without separators.
var Chinese = Profile{
	Name:           "zh",
	Section:        "登場人物",
	ListMarkers:    []string{"角色列表"},
	TitleFields:    []string{"標題"},
	TitleBlacklist: []string{"電視動畫"},
	GenrePrefixes:  []string{"映画"},
	EditionSuffix:  "版",
	StubPrefixes:   []string{"{{Main|", "{{main|"},
	LineSeparator:  "",
}

var profiles = map[string]Profile{
	Japanese.Name: Japanese,
	Chinese.Name:  Chinese,
}

// ProfileByName looks up one of the built in profiles.
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (have %v)",
			name, ProfileNames())
	}
	return p, nil
}

// ProfileNames lists the built in profiles.
func ProfileNames() []string {
	rv := make([]string, 0, len(profiles))
	for k := range profiles {
		rv = append(rv, k)
	}
	sort.Strings(rv)
	return rv
}
