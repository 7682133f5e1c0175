package core

import "testing"

func TestBuildRangeHeader(t *testing.T) {
	tests := []struct {
		resumeFrom int64
		want       string
	}{
		{0, "bytes=0-"},
		{1024, "bytes=1024-"},
		{1073741824, "bytes=1073741824-"},
		{-1, "bytes=0-"},
	}
	for _, tt := range tests {
		if got := BuildRangeHeader(tt.resumeFrom); got != tt.want {
			t.Errorf("BuildRangeHeader(%d) = %q, want %q", tt.resumeFrom, got, tt.want)
		}
	}
}

func TestParseContentRange(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantStart int64
		wantEnd   int64
		wantTotal int64
		wantErr   bool
	}{
		{"full", "bytes 0-999/5000", 0, 999, 5000, false},
		{"resume", "bytes 1000-4999/5000", 1000, 4999, 5000, false},
		{"unknown total", "bytes 1000-1999/*", 1000, 1999, -1, false},
		{"empty", "", 0, 0, 0, true},
		{"wrong unit", "items 0-1/2", 0, 0, 0, true},
		{"no slash", "bytes 0-1", 0, 0, 0, true},
		{"no dash", "bytes 0/2", 0, 0, 0, true},
		{"end before start", "bytes 10-5/20", 0, 0, 0, true},
		{"bad total", "bytes 0-1/lots", 0, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, total, err := ParseContentRange(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if start != tt.wantStart || end != tt.wantEnd || total != tt.wantTotal {
				t.Errorf("ParseContentRange(%q) = (%d, %d, %d), want (%d, %d, %d)",
					tt.header, start, end, total, tt.wantStart, tt.wantEnd, tt.wantTotal)
			}
		})
	}
}
