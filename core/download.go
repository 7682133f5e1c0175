package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// ErrChecksumMismatch is returned when a downloaded file does not hash to the
// expected SHA256.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// StatusError reports an HTTP response the downloader could not use.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.URL, e.Status)
}

// DownloadOptions configures a single file download.
type DownloadOptions struct {
	URL      string
	DestPath string

	// ExpectedSHA256 is the lowercase hex digest to verify against; empty skips verification.
	ExpectedSHA256 string

	// Header is added to the request (authorization, user agent).
	Header http.Header

	// HTTPClient defaults to a client with no timeout; cancellation is by ctx.
	HTTPClient *http.Client

	// OnProgress is called about every 100KB and at EOF.
	OnProgress func(ProgressInfo)

	// Resume continues from the size of an existing DestPath using a Range request.
	Resume bool
}

// DownloadResult describes a finished download.
type DownloadResult struct {
	BytesDownloaded int64
	TotalBytes      int64
	Resumed         bool
	ChecksumValid   bool
	Path            string
}

// DownloadWithProgress fetches opts.URL into opts.DestPath. With Resume set and
// a partial file on disk it asks for the remaining bytes and appends; a 200
// reply restarts the file and a 416 reply discards it and starts over.
func DownloadWithProgress(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if opts.DestPath == "" {
		return nil, fmt.Errorf("DestPath is required")
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	if err := os.MkdirAll(filepath.Dir(opts.DestPath), 0o755); err != nil {
		return nil, fmt.Errorf("create destination directory: %w", err)
	}

	var resumeFrom int64
	if opts.Resume {
		if info, err := os.Stat(opts.DestPath); err == nil {
			resumeFrom = info.Size()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if resumeFrom > 0 {
		req.Header.Set("Range", BuildRangeHeader(resumeFrom))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	var (
		totalSize int64
		resumed   bool
	)
	switch resp.StatusCode {
	case http.StatusOK:
		totalSize = resp.ContentLength
		resumeFrom = 0

	case http.StatusPartialContent:
		resumed = true
		if _, _, total, perr := ParseContentRange(resp.Header.Get("Content-Range")); perr == nil && total > 0 {
			totalSize = total
		}
		if totalSize <= 0 && resp.ContentLength > 0 {
			totalSize = resumeFrom + resp.ContentLength
		}

	case http.StatusRequestedRangeNotSatisfiable:
		_ = os.Remove(opts.DestPath)
		opts.Resume = false
		return DownloadWithProgress(ctx, opts)

	default:
		return nil, &StatusError{URL: opts.URL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if resumed {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(opts.DestPath, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open destination file: %w", err)
	}

	tracker := NewProgressTracker(totalSize)
	if resumed {
		tracker.SetDownloaded(resumeFrom)
	}
	reader := &progressReader{reader: resp.Body, tracker: tracker, onProgress: opts.OnProgress}

	written, err := io.Copy(file, reader)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("download interrupted: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, fmt.Errorf("sync file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("close file: %w", err)
	}
	// The partial file stays for the next resume.
	if totalSize > 0 && !tracker.IsComplete() {
		return nil, fmt.Errorf("download interrupted at %d of %d bytes: %w", tracker.Downloaded(), totalSize, io.ErrUnexpectedEOF)
	}

	result := &DownloadResult{
		BytesDownloaded: written,
		TotalBytes:      totalSize,
		Resumed:         resumed,
		Path:            opts.DestPath,
	}

	if opts.ExpectedSHA256 != "" {
		valid, err := VerifyChecksum(opts.DestPath, opts.ExpectedSHA256)
		if err != nil {
			return nil, fmt.Errorf("checksum verification failed: %w", err)
		}
		if !valid {
			_ = os.Remove(opts.DestPath)
			return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, opts.DestPath)
		}
		result.ChecksumValid = true
	}

	return result, nil
}

type progressReader struct {
	reader       io.Reader
	tracker      *ProgressTracker
	onProgress   func(ProgressInfo)
	lastCallback int64
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.tracker.Update(int64(n))
	}
	if r.onProgress != nil && (n > 0 || err == io.EOF) {
		downloaded := r.tracker.Downloaded()
		if downloaded-r.lastCallback >= 100*1024 || err == io.EOF {
			r.onProgress(r.tracker.Progress())
			r.lastCallback = downloaded
		}
	}
	return n, err
}
