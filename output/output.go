// Package output serializes the generated image: either one sentinel-wrapped
// base64 line on stdout for a parent process to parse, or a PNG file.
package output

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"regexp"
)

// Sentinels around the base64 payload.
const (
	Base64Start = "BASE64_IMAGE_START:"
	Base64End   = ":BASE64_IMAGE_END"
)

// ErrNoImage is returned by ExtractBase64 when stdout has no sentinel line.
var ErrNoImage = errors.New("output: no base64 image in output")

// Non-greedy, and the payload may span lines, as parent processes match it.
var base64Re = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(Base64Start) + `(.*?)` + regexp.QuoteMeta(Base64End))

// EncodePNG encodes img with default compression.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatBase64 returns the sentinel line for pngBytes, newline included.
func FormatBase64(pngBytes []byte) string {
	return Base64Start + base64.StdEncoding.EncodeToString(pngBytes) + Base64End + "\n"
}

// WriteBase64 writes the sentinel line to w in a single Write.
func WriteBase64(w io.Writer, pngBytes []byte) error {
	if _, err := io.WriteString(w, FormatBase64(pngBytes)); err != nil {
		return fmt.Errorf("write base64 image: %w", err)
	}
	return nil
}

// ExtractBase64 finds the first sentinel-wrapped payload in stdout and
// decodes it. Whitespace inside the payload is ignored.
func ExtractBase64(stdout string) ([]byte, error) {
	m := base64Re.FindStringSubmatch(stdout)
	if m == nil {
		return nil, ErrNoImage
	}

	payload := bytes.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, []byte(m[1]))

	data, err := base64.StdEncoding.DecodeString(string(payload))
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	return data, nil
}
