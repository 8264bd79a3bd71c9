package extract

import (
	"fmt"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v2"

	"github.com/joseph-ayodele/invoice-ledger/constants"
)

// Lexicon holds the word lists that drive party resolution and name cleanup.
// The zero value is not usable; start from DefaultLexicon or LoadLexicon.
type Lexicon struct {
	CompanyKeywords    []string `yaml:"company_keywords"`
	ExclusionPatterns  []string `yaml:"exclusion_patterns"`
	ContextSuffixes    []string `yaml:"context_suffixes"`
	NamePrefixes       []string `yaml:"name_prefixes"`
	RegistrationLabels []string `yaml:"registration_labels"`

	exclusions []*regexp.Regexp
	contexts   []*regexp.Regexp
}

// DefaultLexicon returns the built-in lists, compiled.
func DefaultLexicon() *Lexicon {
	lex := &Lexicon{
		CompanyKeywords:    slices.Clone(constants.CompanyKeywords),
		ExclusionPatterns:  slices.Clone(constants.ExclusionPatterns),
		ContextSuffixes:    slices.Clone(constants.ContextSuffixes),
		NamePrefixes:       slices.Clone(constants.NamePrefixes),
		RegistrationLabels: slices.Clone(constants.RegistrationLabels),
	}
	if err := lex.compile(); err != nil {
		// built-in patterns are constant
		panic(err)
	}
	return lex
}

// LoadLexicon extends the default lexicon with the lists found in a YAML file.
// Entries are appended after the built-in ones, so built-in order keeps priority.
// An empty path returns the defaults.
func LoadLexicon(path string) (*Lexicon, error) {
	lex := DefaultLexicon()
	if path == "" {
		return lex, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var extra Lexicon
	if err := yaml.UnmarshalStrict(b, &extra); err != nil {
		return nil, fmt.Errorf("decode lexicon %s: %w", path, err)
	}
	lex.CompanyKeywords = appendUnique(lex.CompanyKeywords, extra.CompanyKeywords)
	lex.ExclusionPatterns = appendUnique(lex.ExclusionPatterns, extra.ExclusionPatterns)
	lex.ContextSuffixes = appendUnique(lex.ContextSuffixes, extra.ContextSuffixes)
	lex.NamePrefixes = appendUnique(lex.NamePrefixes, extra.NamePrefixes)
	lex.RegistrationLabels = appendUnique(lex.RegistrationLabels, extra.RegistrationLabels)
	if err := lex.compile(); err != nil {
		return nil, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

func (l *Lexicon) compile() error {
	l.exclusions = l.exclusions[:0]
	for _, p := range l.ExclusionPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("exclusion pattern %q: %w", p, err)
		}
		l.exclusions = append(l.exclusions, re)
	}
	l.contexts = l.contexts[:0]
	for _, kw := range l.ContextSuffixes {
		if kw == "" {
			continue
		}
		// a whitespace-free token containing the suffix
		l.contexts = append(l.contexts, regexp.MustCompile(`([^\s\p{Zs}]+`+regexp.QuoteMeta(kw)+`[^\s\p{Zs}]*)`))
	}
	return nil
}

func (l *Lexicon) excluded(line string) bool {
	for _, re := range l.exclusions {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func appendUnique(dst, src []string) []string {
	for _, s := range src {
		if s != "" && !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}
