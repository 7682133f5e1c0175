package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sdgen/core"
	"sdgen/logging"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// Response headers set by the hub on resolve requests.
const (
	HeaderRepoCommit = "X-Repo-Commit"
	HeaderLinkedETag = "X-Linked-Etag"
	HeaderLinkedSize = "X-Linked-Size"
	HeaderErrorCode  = "X-Error-Code"
)

const maxRelativeRedirects = 5

// fileMeta is what a HEAD on resolve/<revision>/<file> reports.
type fileMeta struct {
	commit string
	etag   string
	size   int64
	url    string
}

// Fetch makes every file in spec present under snapshots/<commit> and writes
// refs/<revision>. Files already linked in the snapshot are not downloaded
// again. The first file pins the commit; the rest are requested at that
// commit so the snapshot is consistent.
func (c *Cache) Fetch(ctx context.Context, spec ModelSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	log := c.logger().With(zap.String("repo", spec.Repo))

	revision := spec.Revision
	commit := ""
	warnedCopy := false

	for _, file := range spec.Files {
		var meta fileMeta
		err := core.Retry(ctx, c.retryPolicy(), func(int) error {
			m, err := c.head(ctx, spec.Repo, revision, file)
			meta = m
			return err
		}, retryLogger(log, file))
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", file, err)
		}

		if commit == "" {
			commit = meta.commit
			revision = commit
			log.Debug("pinned revision", zap.String("revision", spec.Revision), zap.String("commit", commit))
		}

		snapPath := filepath.Join(c.snapshotDir(spec.Repo, commit), filepath.FromSlash(file))
		if _, err := os.Stat(snapPath); err == nil {
			continue
		}

		blob := c.blobPath(spec.Repo, meta.etag)
		if _, err := os.Stat(blob); err != nil {
			if err := c.downloadBlob(ctx, log, file, meta, blob); err != nil {
				return "", err
			}
		}

		copied, err := linkOrCopy(blob, snapPath)
		if err != nil {
			return "", fmt.Errorf("link %s: %w", file, err)
		}
		if copied && !warnedCopy && os.Getenv("HF_HUB_DISABLE_SYMLINKS_WARNING") == "" {
			warnedCopy = true
			log.Warn("symlinks are not supported in " + c.Dir + ", model files are copied and take more disk space")
		}
	}

	if spec.Revision != commit {
		ref := c.refPath(spec.Repo, spec.Revision)
		if err := os.MkdirAll(filepath.Dir(ref), 0o755); err != nil {
			return "", fmt.Errorf("write ref: %w", err)
		}
		if err := os.WriteFile(ref, []byte(commit), 0o644); err != nil {
			return "", fmt.Errorf("write ref: %w", err)
		}
	}

	return c.snapshotDir(spec.Repo, commit), nil
}

func (c *Cache) retryPolicy() core.RetryPolicy {
	if c.Retry.Attempts == 0 {
		return core.DefaultRetryPolicy()
	}
	return c.Retry
}

func (c *Cache) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

func (c *Cache) header() http.Header {
	h := http.Header{}
	if c.UserAgent != "" {
		h.Set("User-Agent", c.UserAgent)
	}
	if c.Token != "" {
		h.Set("Authorization", "Bearer "+c.Token)
	}
	return h
}

// FileURL is <endpoint>/<repo>/resolve/<revision>/<file>.
func (c *Cache) FileURL(repo, revision, file string) string {
	segments := strings.Split(file, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(c.Endpoint, "/") + "/" + repo + "/resolve/" +
		url.PathEscape(revision) + "/" + strings.Join(segments, "/")
}

// head resolves file metadata. Redirects are not followed blindly: a relative
// redirect (renamed repo) is followed, a redirect to the content CDN is not,
// since the metadata lives on the redirect response itself.
func (c *Cache) head(ctx context.Context, repo, revision, file string) (fileMeta, error) {
	client := *c.client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	target := c.FileURL(repo, revision, file)
	for hop := 0; hop <= maxRelativeRedirects; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
		if err != nil {
			return fileMeta{}, core.Permanent(err)
		}
		req.Header = c.header()
		req.Header.Set("Accept-Encoding", "identity")

		resp, err := client.Do(req)
		if err != nil {
			return fileMeta{}, err
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return metaFrom(resp, target)

		case resp.StatusCode >= 300 && resp.StatusCode < 400:
			loc, err := resp.Location()
			if err != nil {
				return fileMeta{}, core.Permanent(fmt.Errorf("hub: redirect without location from %s", target))
			}
			if resp.Header.Get(HeaderLinkedETag) != "" || loc.Host != req.URL.Host {
				return metaFrom(resp, target)
			}
			target = loc.String()

		default:
			return fileMeta{}, statusErr(resp, target, repo, revision, file)
		}
	}
	return fileMeta{}, core.Permanent(fmt.Errorf("hub: too many redirects resolving %s", file))
}

func statusErr(resp *http.Response, target, repo, revision, file string) error {
	se := &core.StatusError{URL: target, StatusCode: resp.StatusCode, Status: resp.Status}
	switch resp.Header.Get(HeaderErrorCode) {
	case "RevisionNotFound":
		return fmt.Errorf("%w: %s@%s (%w)", ErrRevisionNotFound, repo, revision, se)
	case "EntryNotFound":
		return fmt.Errorf("%w: %s in %s@%s (%w)", ErrEntryNotFound, file, repo, revision, se)
	}
	return se
}

func metaFrom(resp *http.Response, target string) (fileMeta, error) {
	meta := fileMeta{
		commit: resp.Header.Get(HeaderRepoCommit),
		etag:   normalizeETag(resp.Header.Get(HeaderLinkedETag)),
		size:   resp.ContentLength,
		url:    target,
	}
	if meta.etag == "" {
		meta.etag = normalizeETag(resp.Header.Get("ETag"))
	}
	if s := resp.Header.Get(HeaderLinkedSize); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			meta.size = n
		}
	}

	if meta.commit == "" {
		return fileMeta{}, core.Permanent(fmt.Errorf("hub: no %s header from %s", HeaderRepoCommit, target))
	}
	if meta.etag == "" || strings.ContainsAny(meta.etag, `/\`) {
		return fileMeta{}, core.Permanent(fmt.Errorf("hub: no usable ETag from %s", target))
	}
	return meta, nil
}

// normalizeETag strips the weak prefix and quotes: W/"abc" -> abc.
func normalizeETag(etag string) string {
	etag = strings.TrimPrefix(strings.TrimSpace(etag), "W/")
	return strings.Trim(etag, `"`)
}

// downloadBlob writes blobs/<etag> through blobs/<etag>.incomplete, resuming
// a previous partial download. LFS etags are SHA256 digests and are verified.
func (c *Cache) downloadBlob(ctx context.Context, log *logging.Logger, file string, meta fileMeta, blob string) error {
	partial := blob + ".incomplete"
	expected := ""
	if core.IsSHA256Hex(meta.etag) {
		expected = meta.etag
	}

	size := "unknown size"
	if meta.size > 0 {
		size = humanize.Bytes(uint64(meta.size))
	}
	log.Debugf("downloading %s (%s)", file, size)

	var last time.Time
	onProgress := func(p core.ProgressInfo) {
		if time.Since(last) < 2*time.Second {
			return
		}
		last = time.Now()
		log.Debug(file+": "+p.String(), zap.Duration("eta", p.ETA))
	}

	err := core.Retry(ctx, c.retryPolicy(), func(int) error {
		_, err := core.DownloadWithProgress(ctx, core.DownloadOptions{
			URL:            meta.url,
			DestPath:       partial,
			ExpectedSHA256: expected,
			Header:         c.header(),
			HTTPClient:     c.client(),
			OnProgress:     onProgress,
			Resume:         true,
		})
		return err
	}, retryLogger(log, file))
	if err != nil {
		return fmt.Errorf("download %s: %w", file, err)
	}

	if err := os.Rename(partial, blob); err != nil {
		return fmt.Errorf("download %s: %w", file, err)
	}
	return nil
}

func retryLogger(log *logging.Logger, file string) func(int, error, time.Duration) {
	return func(attempt int, err error, delay time.Duration) {
		log.Debug("retrying", zap.String("file", file), zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
	}
}

// linkOrCopy points snapPath at blob with a relative symlink, copying the
// content when the filesystem refuses symlinks. copied reports the fallback.
func linkOrCopy(blob, snapPath string) (copied bool, err error) {
	if err := os.MkdirAll(filepath.Dir(snapPath), 0o755); err != nil {
		return false, err
	}
	if err := os.Remove(snapPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	rel, err := filepath.Rel(filepath.Dir(snapPath), blob)
	if err == nil {
		if err = os.Symlink(rel, snapPath); err == nil {
			return false, nil
		}
	}

	return true, copyFile(blob, snapPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
