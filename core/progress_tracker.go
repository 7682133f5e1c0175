package core

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// ProgressInfo is a snapshot of a download in flight.
type ProgressInfo struct {
	Total      int64 // 0 if unknown
	Downloaded int64
	Percent    float64 // -1 if Total is unknown

	SpeedBytesPerSec float64
	ETA              time.Duration
	Elapsed          time.Duration
}

// String renders the snapshot as "12 MB / 3.4 GB (0.4%) at 5.1 MB/s".
func (i ProgressInfo) String() string {
	speed := humanize.Bytes(uint64(i.SpeedBytesPerSec)) + "/s"
	if i.Total <= 0 {
		return humanize.Bytes(uint64(i.Downloaded)) + " at " + speed
	}
	return humanize.Bytes(uint64(i.Downloaded)) + " / " + humanize.Bytes(uint64(i.Total)) +
		" (" + humanize.FtoaWithDigits(i.Percent, 1) + "%) at " + speed
}

// ProgressTracker accumulates bytes and keeps an exponential moving average
// of throughput. Safe for concurrent use.
type ProgressTracker struct {
	mu sync.RWMutex

	total          int64
	downloaded     int64
	startTime      time.Time
	lastUpdateTime time.Time
	lastDownloaded int64
	speedAvg       float64
	speedAlpha     float64
}

// NewProgressTracker starts a tracker; total may be 0 when unknown.
func NewProgressTracker(total int64) *ProgressTracker {
	now := time.Now()
	return &ProgressTracker{
		total:          total,
		startTime:      now,
		lastUpdateTime: now,
		speedAlpha:     0.3,
	}
}

// Update adds n bytes.
func (p *ProgressTracker) Update(n int64) {
	if n <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.downloaded += n
	p.updateSpeed()
}

// SetDownloaded sets the absolute count, used when resuming. It does not count
// toward the speed average.
func (p *ProgressTracker) SetDownloaded(downloaded int64) {
	if downloaded < 0 {
		downloaded = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.downloaded = downloaded
	p.lastDownloaded = downloaded
}

// must hold mu
func (p *ProgressTracker) updateSpeed() {
	now := time.Now()
	elapsed := now.Sub(p.lastUpdateTime).Seconds()
	if elapsed < 0.1 {
		return
	}

	instant := float64(p.downloaded-p.lastDownloaded) / elapsed
	if p.speedAvg == 0 {
		p.speedAvg = instant
	} else {
		p.speedAvg = p.speedAlpha*instant + (1-p.speedAlpha)*p.speedAvg
	}
	p.lastUpdateTime = now
	p.lastDownloaded = p.downloaded
}

// Progress returns the current snapshot.
func (p *ProgressTracker) Progress() ProgressInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	info := ProgressInfo{
		Total:            p.total,
		Downloaded:       p.downloaded,
		Percent:          -1,
		SpeedBytesPerSec: p.speedAvg,
		Elapsed:          time.Since(p.startTime),
	}
	if p.total > 0 {
		info.Percent = min(float64(p.downloaded)/float64(p.total)*100, 100)
		if p.speedAvg > 0 && p.downloaded < p.total {
			info.ETA = time.Duration(float64(p.total-p.downloaded) / p.speedAvg * float64(time.Second))
		}
	}
	return info
}

// Downloaded returns the byte count so far.
func (p *ProgressTracker) Downloaded() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.downloaded
}

// IsComplete is false while total is unknown.
func (p *ProgressTracker) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.total > 0 && p.downloaded >= p.total
}
