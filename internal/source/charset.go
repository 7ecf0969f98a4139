package source

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newUTF8Reader converts r to UTF-8. An empty label means the input is
// already UTF-8; other labels ("windows-1252", "latin1", ...) are resolved
// with the WHATWG encoding names. A leading byte order mark always wins over
// the label and is stripped.
func newUTF8Reader(r io.Reader, label string) (io.Reader, error) {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}

	enc, _ := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("unknown source encoding %q", label)
	}

	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}
