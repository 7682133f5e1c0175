package output

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxFilenameStem is the longest derived name before ".png", in characters.
const MaxFilenameStem = 50

// Letters, digits and underscore (Unicode word characters), hyphen, period, space.
var unsafeFilenameRe = regexp.MustCompile(`[^\p{L}\p{N}_\-. ]`)

// DeriveFilename turns a prompt into a file name: lower-cased, spaces to
// underscores, other unsafe characters dropped, cut to 50 characters, ".png"
// appended. "A Cat!" becomes "a_cat.png".
func DeriveFilename(prompt string) string {
	name := strings.ReplaceAll(strings.ToLower(prompt), " ", "_")
	name = unsafeFilenameRe.ReplaceAllString(name, "")
	if r := []rune(name); len(r) > MaxFilenameStem {
		name = string(r[:MaxFilenameStem])
	}
	return name + ".png"
}

// JPEGQuality is used when the output name ends in .jpg or .jpeg.
const JPEGQuality = 75

// SaveFile writes img at path through a temporary file in the same
// directory, so a failed write never leaves a truncated image behind. The
// format follows the extension: .jpg and .jpeg write JPEG, anything else PNG.
func SaveFile(path string, img image.Image) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".sdgen-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := encodeFor(path, tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func encodeFor(path string, w io.Writer, img image.Image) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return fmt.Errorf("encode jpeg: %w", err)
		}
		return nil
	default:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	}
}

// SavedMessage is the confirmation printed after SaveFile.
func SavedMessage(filename string) string {
	return fmt.Sprintf("Image saved as '%s'", filename)
}

// WriteSaved prints the confirmation line for a saved file.
func WriteSaved(w io.Writer, filename string) error {
	_, err := fmt.Fprintln(w, SavedMessage(filename))
	return err
}
