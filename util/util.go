// Package util is a set of utility variables or methods
package util

import (
	"path"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// DefaultImageExtensions matches the extensions accepted when none are configured.
const DefaultImageExtensions = "bmp,jpg,jpeg,gif,png"

// ParseExtensions turns a comma separated extension list ("jpg, .PNG") into a set of
// lower case extensions without the leading dot.
func ParseExtensions(list string) mapset.Set[string] {
	exts := mapset.NewSet[string]()
	for _, ext := range strings.Split(list, ",") {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext == "" {
			continue
		}
		exts.Add(ext)
	}
	return exts
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(exts mapset.Set[string], name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		return false
	}
	return exts.Contains(ext)
}
