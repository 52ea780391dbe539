package textutil_test

import (
	"testing"

	"fakebench/internal/textutil"
)

func TestCollapseWhitespace(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"plain", "plain"},
		{"  leading and trailing  ", "leading and trailing"},
		{"ffmpeg exited\nwith status 1\n\tbroken pipe", "ffmpeg exited with status 1 broken pipe"},
	}
	for _, tc := range cases {
		if got := textutil.CollapseWhitespace(tc.in); got != tc.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"generator crashed hard", 10, "generator…"},
		{"anything", 0, ""},
		{"héllo wörld", 6, "héllo…"},
	}
	for _, tc := range cases {
		if got := textutil.Truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
