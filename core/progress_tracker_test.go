package core

import (
	"strings"
	"testing"
)

func TestProgressTracker(t *testing.T) {
	p := NewProgressTracker(1000)
	p.Update(250)
	p.Update(0)
	p.Update(-5)

	info := p.Progress()
	if info.Downloaded != 250 {
		t.Errorf("Downloaded = %d, want 250", info.Downloaded)
	}
	if info.Percent != 25 {
		t.Errorf("Percent = %v, want 25", info.Percent)
	}
	if p.IsComplete() {
		t.Error("IsComplete() = true at 25%")
	}

	p.SetDownloaded(1200)
	if got := p.Progress().Percent; got != 100 {
		t.Errorf("Percent = %v, want capped at 100", got)
	}
	if !p.IsComplete() {
		t.Error("IsComplete() = false past total")
	}
}

func TestProgressTracker_UnknownTotal(t *testing.T) {
	p := NewProgressTracker(0)
	p.Update(2048)

	info := p.Progress()
	if info.Percent != -1 {
		t.Errorf("Percent = %v, want -1", info.Percent)
	}
	if p.IsComplete() {
		t.Error("IsComplete() = true with unknown total")
	}
	if s := info.String(); !strings.Contains(s, "2.0 kB") {
		t.Errorf("String() = %q", s)
	}
}

func TestProgressInfo_String(t *testing.T) {
	info := ProgressInfo{Total: 3_000_000_000, Downloaded: 1_500_000_000, Percent: 50, SpeedBytesPerSec: 5_000_000}
	s := info.String()
	for _, want := range []string{"1.5 GB", "3.0 GB", "50%", "5.0 MB/s"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}
