// Package filename cleans user-supplied names before they are sent to the
// processing backend.
package filename

import (
	"path"
	"regexp"
	"strings"
)

// MaxLen bounds the cleaned name, extension included.
const MaxLen = 120

var (
	invalidChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	multiDash    = regexp.MustCompile(`[-_]{2,}`)
	validExt     = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)
)

// UploadName reduces a browser or CLI supplied file name to a safe base name.
// Directory parts are dropped, unsafe characters and whitespace become dashes
// and the extension is lowercased. An empty result becomes "video" plus the
// extension.
func UploadName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" {
		name = ""
	}

	ext := strings.ToLower(path.Ext(name))
	if !validExt.MatchString(ext) {
		ext = ""
	}
	stem := slug(strings.TrimSuffix(name, path.Ext(name)))
	if ext == "" {
		stem = slug(name)
	}
	if stem == "" {
		stem = "video"
	}

	if len(stem)+len(ext) > MaxLen {
		stem = strings.TrimRight(stem[:MaxLen-len(ext)], "-.")
	}
	return stem + ext
}

func slug(s string) string {
	s = invalidChars.ReplaceAllString(s, "-")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return '-'
		}
		return r
	}, s)
	s = multiDash.ReplaceAllString(s, "-")
	return strings.Trim(s, "-.")
}
