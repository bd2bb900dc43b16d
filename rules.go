package wikichars

import (
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// A TemplateKind says how a template flattens to text.
type TemplateKind int

const (
	// Unresolved templates aren't in the table.  They flatten to
	// nothing and get counted.
	Unresolved TemplateKind = iota
	// Drop is for citation and anchor noise.
	Drop
	// Surface shows one positional argument as is.
	Surface
	// Furigana renders base(reading), or just base.
	Furigana
	// Pipe is the {{!}} escape.
	Pipe
	// DecodeRefs unescapes numeric character references.
	DecodeRefs
	// LangText shows the text of a language tagged template.
	LangText
	// Quote joins the first two arguments of an attribution.
	Quote
)

var kindNames = []string{
	Unresolved: "unresolved",
	Drop:       "drop",
	Surface:    "surface",
	Furigana:   "furigana",
	Pipe:       "pipe",
	DecodeRefs: "decode",
	LangText:   "lang",
	Quote:      "quote",
}

func (k TemplateKind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "TemplateKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseTemplateKind looks up a kind by its String form.
func ParseTemplateKind(s string) (TemplateKind, error) {
	for i, n := range kindNames {
		if n == s {
			return TemplateKind(i), nil
		}
	}
	return Unresolved, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// UnmarshalYAML reads a kind from its name.
func (k *TemplateKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	kind, err := ParseTemplateKind(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Rule table errors.
var (
	ErrUnknownKind   = errors.New("unknown template kind")
	ErrNoNames       = errors.New("rule has no template names")
	ErrBadParam      = errors.New("rule param must be at least 1")
	ErrMissingParam  = errors.New("missing template parameter")
	errNoRuleForKind = errors.New("no resolver for template kind")
)

// A Rule is the table entry for one template name.
type Rule struct {
	Kind TemplateKind
	// Param is the argument a Surface rule shows.  Zero means 1.
	Param int
}

type resolveFunc func(r Rule, args templateArgs) (string, error)

func requireArg(args templateArgs, name string) (string, error) {
	v, ok := args.get(name)
	if !ok {
		return "", fmt.Errorf("%w %s", ErrMissingParam, name)
	}
	return v, nil
}

var resolvers = map[TemplateKind]resolveFunc{
	Drop: func(Rule, templateArgs) (string, error) {
		return "", nil
	},
	Surface: func(r Rule, args templateArgs) (string, error) {
		p := r.Param
		if p < 1 {
			p = 1
		}
		return requireArg(args, strconv.Itoa(p))
	},
	Furigana: func(_ Rule, args templateArgs) (string, error) {
		base, err := requireArg(args, "1")
		if err != nil {
			return "", err
		}
		if reading, _ := args.get("2"); reading != "" {
			return base + "(" + reading + ")", nil
		}
		return base, nil
	},
	Pipe: func(Rule, templateArgs) (string, error) {
		return "|", nil
	},
	DecodeRefs: func(_ Rule, args templateArgs) (string, error) {
		v, err := requireArg(args, "1")
		if err != nil {
			return "", err
		}
		if strings.Contains(v, "&#") {
			return html.UnescapeString(v), nil
		}
		return v, nil
	},
	LangText: func(_ Rule, args templateArgs) (string, error) {
		return requireArg(args, "2")
	},
	Quote: func(_ Rule, args templateArgs) (string, error) {
		first, err := requireArg(args, "1")
		if err != nil {
			return "", err
		}
		if args.positional("2") {
			second, _ := args.get("2")
			return first + second, nil
		}
		return first, nil
	},
}

func (r Rule) resolve(args templateArgs) (string, error) {
	f, ok := resolvers[r.Kind]
	if !ok {
		return "", fmt.Errorf("%w %v", errNoRuleForKind, r.Kind)
	}
	return f(r, args)
}

// A RuleTable maps exact template names to rules.  It is never
// modified once built; With and LoadRules return new tables.
type RuleTable struct {
	rules map[string]Rule
}

// NewRuleTable builds a table from the given rules.  Unresolved
// entries are left out.
func NewRuleTable(rules map[string]Rule) *RuleTable {
	return (&RuleTable{}).With(rules)
}

// With returns a copy of the table with the given rules laid over it.
// An Unresolved rule removes the name.
func (t *RuleTable) With(rules map[string]Rule) *RuleTable {
	rv := &RuleTable{rules: make(map[string]Rule, len(t.rules)+len(rules))}
	for k, v := range t.rules {
		rv.rules[k] = v
	}
	for k, v := range rules {
		if v.Kind == Unresolved {
			delete(rv.rules, k)
			continue
		}
		rv.rules[k] = v
	}
	return rv
}

// Lookup finds the rule for a template name.  Names not in the table
// come back Unresolved.
func (t *RuleTable) Lookup(name string) Rule {
	if r, ok := t.rules[name]; ok {
		return r
	}
	return Rule{Kind: Unresolved}
}

// Len is the number of names in the table.
func (t *RuleTable) Len() int {
	return len(t.rules)
}

func ruleNames(k TemplateKind, param int, names ...string) map[string]Rule {
	rv := make(map[string]Rule, len(names))
	for _, n := range names {
		rv[n] = Rule{Kind: k, Param: param}
	}
	return rv
}

// DefaultRules is the jawiki rule table.
func DefaultRules() *RuleTable {
	t := &RuleTable{}
	for _, m := range []map[string]Rule{
		ruleNames(Drop, 0, "R", "Refnest", "refnest", "Sfn", "efn", "Efn2",
			"efn2", "ISBN2", "Anchors", "anchors"),
		ruleNames(Surface, 1, "仮リンク", "en", "要出典範囲", "Visible anchor", "Vanc"),
		ruleNames(Furigana, 0, "読み仮名", "Ruby", "ruby", "読み仮名_ruby不使用",
			"読み仮名 ruby不使用"),
		ruleNames(Pipe, 0, "!"),
		ruleNames(DecodeRefs, 0, "補助漢字フォント", "JIS2004フォント"),
		ruleNames(LangText, 0, "lang", "Lang"),
		ruleNames(Quote, 0, "Harvnb", "Harvnb "),
	} {
		t = t.With(m)
	}
	return t
}

type ruleSpec struct {
	Kind  TemplateKind `yaml:"kind"`
	Param int          `yaml:"param"`
	Names []string     `yaml:"names"`
}

type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

// LoadRules reads extra rules from yaml and lays them over base:
//
//	rules:
//	  - kind: furigana
//	    names: [ふりがな]
//	  - kind: surface
//	    param: 2
//	    names: [Nihongo]
//	  - kind: unresolved
//	    names: [Harvnb]
func LoadRules(r io.Reader, base *RuleTable) (*RuleTable, error) {
	var f ruleFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding rules: %w", err)
	}

	extra := map[string]Rule{}
	for i, rf := range f.Rules {
		if len(rf.Names) == 0 {
			return nil, fmt.Errorf("rule %d: %w", i, ErrNoNames)
		}
		if rf.Kind == Surface && rf.Param < 1 {
			return nil, fmt.Errorf("rule %d: %w", i, ErrBadParam)
		}
		for _, n := range rf.Names {
			extra[n] = Rule{Kind: rf.Kind, Param: rf.Param}
		}
	}

	if base == nil {
		base = &RuleTable{}
	}
	return base.With(extra), nil
}

// LoadRulesFile is LoadRules reading from the named file.
func LoadRulesFile(path string, base *RuleTable) (*RuleTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadRules(f, base)
}
