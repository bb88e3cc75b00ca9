package util

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseExtensions(t *testing.T) {
	got := ParseExtensions(" JPG, .png,,webp ").ToSlice()
	sort.Strings(got)

	want := []string{"jpg", "png", "webp"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseExtensions mismatch (-want +got):\n%s", diff)
	}
}

func TestHasExtension(t *testing.T) {
	exts := ParseExtensions(DefaultImageExtensions)

	tests := []struct {
		name string
		want bool
	}{
		{"/a/b/photo1.jpg", true},
		{"IMG_0001.JPEG", true},
		{"clip.mp4", false},
		{"README", false},
		{"archive.tar.gif", true},
	}
	for _, tt := range tests {
		if got := HasExtension(exts, tt.name); got != tt.want {
			t.Errorf("HasExtension(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
