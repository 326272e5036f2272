package util

import (
	"testing"
	"time"
)

func TestIDSourceMonotonic(t *testing.T) {
	fixed := time.UnixMilli(1735689600000)
	src := NewIDSource(func() time.Time { return fixed })

	first, ms1 := src.Next()
	second, ms2 := src.Next()
	if first != "1735689600000" || ms1 != 1735689600000 {
		t.Fatalf("unexpected first id %s (%d)", first, ms1)
	}
	if second != "1735689600001" || ms2 != ms1+1 {
		t.Fatalf("expected bumped id, got %s (%d)", second, ms2)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "张三-简历.pdf", want: "张三-简历.pdf"},
		{in: "../../etc/passwd.pdf", want: "passwd.pdf"},
		{in: `C:\Users\hr\候选人..v2.pdf`, want: "候选人..v2.pdf"},
	}
	for _, tt := range tests {
		got, err := SanitizeFileName(tt.in)
		if err != nil || got != tt.want {
			t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	for _, bad := range []string{"", "  ", "dir/", ".."} {
		if _, err := SanitizeFileName(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
