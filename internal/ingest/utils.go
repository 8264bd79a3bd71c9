package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-ledger/constants"
)

// AllowedExt checks if a file extension is in the allowed set (defaults to pdf/png/jpg/jpeg).
func AllowedExt(ext string, allowed map[string]struct{}) bool {
	if allowed == nil {
		allowed = constants.AllowedExtensions
	}
	_, ok := allowed[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}

// ExtSet builds an extension set from user input such as "pdf,.TXT".
func ExtSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return nil
	}
	set := map[string]struct{}{}
	for _, e := range exts {
		if e = constants.NormalizeExt(e); e != "" {
			set[e] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
