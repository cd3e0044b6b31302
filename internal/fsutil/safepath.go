// Package fsutil contains filename hygiene helpers for the download path.
package fsutil

import (
	"path/filepath"
	"strconv"
	"strings"
)

// SafeName reduces a server-supplied file name to a bare local name.
// The server stores whatever name the uploader chose, so a hostile name
// like "../../.bashrc" must not steer a save-as outside the download
// directory.
func SafeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.FromSlash(name))
	name = strings.TrimSpace(name)
	switch name {
	case "", ".", "..", string(filepath.Separator):
		return "download"
	}
	// Strip characters that are path-meaningful or invalid on common
	// filesystems.
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, name)
	return name
}

// NumberedName derives an alternative name for the nth collision:
// "report.pdf" becomes "report (2).pdf".
func NumberedName(name string, n int) string {
	if n <= 1 {
		return name
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + " (" + strconv.Itoa(n) + ")" + ext
}
