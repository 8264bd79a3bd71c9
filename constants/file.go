package constants

import "strings"

// FileType is the upper-cased extension with its leading dot, as shown in the report (".PDF").
type FileType string

const (
	PDF  FileType = ".PDF"
	PNG  FileType = ".PNG"
	JPG  FileType = ".JPG"
	JPEG FileType = ".JPEG"
	TXT  FileType = ".TXT"
)

// AllowedExtensions holds the extensions enumerated by default when scanning a directory.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// FileTypeOf maps an extension (with or without dot, any case) to its report form.
func FileTypeOf(ext string) FileType {
	ext = NormalizeExt(ext)
	if ext == "" {
		return ""
	}
	return FileType("." + strings.ToUpper(ext))
}

// HasText reports whether documents of this type carry extractable text.
func (t FileType) HasText() bool {
	return t == PDF || t == TXT
}

// IsImage reports whether the type is one of the scanned image formats.
func (t FileType) IsImage() bool {
	switch t {
	case PNG, JPG, JPEG:
		return true
	}
	return false
}
