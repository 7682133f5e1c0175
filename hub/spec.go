package hub

import (
	"fmt"
	"path"
	"strings"

	"sdgen/sdruntime"
)

// ModelSpec names a repo revision and the files a pipeline needs from it.
type ModelSpec struct {
	Repo     string
	Revision string
	Files    []string // slash-separated, relative to the repo root
}

// DiffusersFiles are the components of a diffusers text-to-image pipeline.
// The safety checker and its feature extractor are left out because the
// pipeline always loads with the post-filter disabled.
var DiffusersFiles = []string{
	"model_index.json",
	"scheduler/scheduler_config.json",
	"tokenizer/merges.txt",
	"tokenizer/special_tokens_map.json",
	"tokenizer/tokenizer_config.json",
	"tokenizer/vocab.json",
	"text_encoder/config.json",
	sdruntime.TextEncoderWeights,
	"unet/config.json",
	sdruntime.UNetWeights,
	"vae/config.json",
	sdruntime.VAEWeights,
}

// DiffusersSpec is the spec for a diffusers pipeline at revision.
func DiffusersSpec(repo, revision string) ModelSpec {
	files := make([]string, len(DiffusersFiles))
	copy(files, DiffusersFiles)
	return ModelSpec{Repo: repo, Revision: revision, Files: files}
}

// Validate rejects repo ids and file names that would escape the cache.
func (s ModelSpec) Validate() error {
	org, name, ok := strings.Cut(s.Repo, "/")
	if !ok || org == "" || name == "" || strings.Contains(name, "/") || strings.Contains(s.Repo, "..") {
		return fmt.Errorf("hub: invalid repo id %q", s.Repo)
	}
	if s.Revision == "" || strings.Contains(s.Revision, "..") {
		return fmt.Errorf("hub: invalid revision %q", s.Revision)
	}
	if len(s.Files) == 0 {
		return fmt.Errorf("hub: no files requested from %s", s.Repo)
	}
	for _, f := range s.Files {
		if f == "" || path.IsAbs(f) || path.Clean(f) != f || strings.HasPrefix(f, "../") {
			return fmt.Errorf("hub: invalid file name %q", f)
		}
	}
	return nil
}
