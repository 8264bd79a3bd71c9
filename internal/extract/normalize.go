package extract

import "strings"

// NormalizeName strips one leading label ("名称:" and variants) and cuts the value at the
// first registration-number label.
func (l *Lexicon) NormalizeName(value string) string {
	if value == "" {
		return value
	}
	for _, prefix := range l.NamePrefixes {
		if strings.HasPrefix(value, prefix) {
			value = strings.TrimSpace(value[len(prefix):])
			break
		}
	}
	for _, label := range l.RegistrationLabels {
		if i := strings.Index(value, label); i >= 0 {
			value = strings.TrimSpace(value[:i])
			break
		}
	}
	return value
}
