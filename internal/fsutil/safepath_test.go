package fsutil

import "testing"

func TestSafeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\windows\\system32\\cmd.exe", "cmd.exe"},
		{"/absolute/path/file.txt", "file.txt"},
		{"name:with:colons", "name_with_colons"},
		{"  padded.txt  ", "padded.txt"},
		{"", "download"},
		{".", "download"},
		{"..", "download"},
		{"/", "download"},
	}
	for _, tc := range cases {
		if got := SafeName(tc.in); got != tc.want {
			t.Errorf("SafeName(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNumberedName(t *testing.T) {
	cases := []struct {
		name string
		n    int
		want string
	}{
		{"report.pdf", 1, "report.pdf"},
		{"report.pdf", 2, "report (2).pdf"},
		{"report.pdf", 10, "report (10).pdf"},
		{"archive.tar.gz", 2, "archive.tar (2).gz"},
		{"noext", 3, "noext (3)"},
		{"report.pdf", 0, "report.pdf"},
	}
	for _, tc := range cases {
		if got := NumberedName(tc.name, tc.n); got != tc.want {
			t.Errorf("NumberedName(%q, %d)=%q, want %q", tc.name, tc.n, got, tc.want)
		}
	}
}
