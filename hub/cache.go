// Package hub reads and fills a Hugging Face hub model cache.
//
// The on-disk layout is the standard hub cache layout, so a cache
// populated by other hub clients is usable here and the other way round:
//
//	<dir>/models--<org>--<name>/refs/<revision>            commit hash
//	<dir>/models--<org>--<name>/blobs/<etag>               file content
//	<dir>/models--<org>--<name>/snapshots/<commit>/<file>  link to the blob
package hub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"sdgen/core"
	"sdgen/logging"
)

var (
	// ErrNotCached means the snapshot is missing or incomplete on disk.
	ErrNotCached = errors.New("hub: model not in local cache")

	// ErrRevisionNotFound means the hub does not know the requested revision.
	ErrRevisionNotFound = errors.New("hub: revision not found")

	// ErrEntryNotFound means a required file is absent from the repo.
	ErrEntryNotFound = errors.New("hub: file not found in repo")
)

var commitHashRe = regexp.MustCompile(`^[0-9a-f]{40}$`)

// RepoFolderName maps "CompVis/stable-diffusion-v1-4" to
// "models--CompVis--stable-diffusion-v1-4".
func RepoFolderName(repo string) string {
	return "models--" + strings.ReplaceAll(repo, "/", "--")
}

// Cache is a hub cache directory plus the endpoint used to fill it.
type Cache struct {
	Dir      string
	Endpoint string
	Token    string

	// Client defaults to http.DefaultClient.
	Client *http.Client

	// Retry applies per file; zero value means core.DefaultRetryPolicy.
	Retry core.RetryPolicy

	// UserAgent is sent with every request.
	UserAgent string

	Logger *logging.Logger
}

// NewCache builds a Cache from the process configuration.
func NewCache(cfg *core.Config, logger *logging.Logger) *Cache {
	policy := core.DefaultRetryPolicy()
	policy.Attempts = cfg.DownloadRetries
	return &Cache{
		Dir:      cfg.CacheDir,
		Endpoint: cfg.HFEndpoint,
		Token:    cfg.HFToken,
		Retry:    policy,
		Logger:   logger,
	}
}

func (c *Cache) repoDir(repo string) string {
	return filepath.Join(c.Dir, RepoFolderName(repo))
}

func (c *Cache) refPath(repo, revision string) string {
	return filepath.Join(c.repoDir(repo), "refs", filepath.FromSlash(revision))
}

func (c *Cache) blobPath(repo, etag string) string {
	return filepath.Join(c.repoDir(repo), "blobs", etag)
}

func (c *Cache) snapshotDir(repo, commit string) string {
	return filepath.Join(c.repoDir(repo), "snapshots", commit)
}

func (c *Cache) logger() *logging.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

// resolveCommit reads refs/<revision>. A revision that already is a commit
// hash resolves to itself.
func (c *Cache) resolveCommit(repo, revision string) (string, error) {
	data, err := os.ReadFile(c.refPath(repo, revision))
	if err == nil {
		commit := strings.TrimSpace(string(data))
		if commitHashRe.MatchString(commit) {
			return commit, nil
		}
		return "", fmt.Errorf("%w: ref %s of %s is corrupt", ErrNotCached, revision, repo)
	}
	if commitHashRe.MatchString(revision) {
		return revision, nil
	}
	return "", fmt.Errorf("%w: no ref %s for %s", ErrNotCached, revision, repo)
}

// ResolveLocal returns the snapshot directory for spec without touching the
// network. Every file in spec.Files must be present.
func (c *Cache) ResolveLocal(spec ModelSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	commit, err := c.resolveCommit(spec.Repo, spec.Revision)
	if err != nil {
		return "", err
	}

	dir := c.snapshotDir(spec.Repo, commit)
	for _, f := range spec.Files {
		// Stat follows the link, so a dangling snapshot entry counts as missing.
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(f))); err != nil {
			return "", fmt.Errorf("%w: %s is missing %s", ErrNotCached, spec.Repo, f)
		}
	}
	return dir, nil
}

// Snapshot returns a complete snapshot directory. With localOnly it is
// ResolveLocal; otherwise missing files are fetched first.
func (c *Cache) Snapshot(ctx context.Context, spec ModelSpec, localOnly bool) (string, error) {
	if localOnly {
		return c.ResolveLocal(spec)
	}
	return c.Fetch(ctx, spec)
}
