package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxFileSize matches the server's per-file limit.
const MaxFileSize = 10 << 20

// allowed are the image types the upload endpoint accepts.
var allowed = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// File is one local file selected for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
	// Size is the on-disk size when Data was not read, zero otherwise.
	Size int64
}

func (f File) size() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Data))
}

// Rejection records why a file was dropped from a batch.
type Rejection struct {
	Name   string
	Reason string
}

// Filter sniffs every file's content and keeps supported images under the
// size limit. ContentType is set from the sniffed type.
func Filter(files []File) ([]File, []Rejection) {
	var accepted []File
	var rejected []Rejection
	for _, f := range files {
		if f.size() > MaxFileSize {
			rejected = append(rejected, Rejection{Name: f.Name, Reason: "larger than 10MB"})
			continue
		}
		mt := mimetype.Detect(f.Data)
		if !mimetype.EqualsAny(mt.String(), allowed...) {
			rejected = append(rejected, Rejection{Name: f.Name, Reason: "unsupported type " + mt.String()})
			continue
		}
		f.ContentType = mt.String()
		accepted = append(accepted, f)
	}
	return accepted, rejected
}

// LoadFiles reads paths from disk. Paths may be quoted or escaped the way a
// terminal pastes dropped files; see ParsePaths.
func LoadFiles(paths []string) ([]File, error) {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("reading %s: is a directory", p)
		}
		if info.Size() > MaxFileSize {
			// Leave the rejection to Filter so it is reported alongside the rest.
			files = append(files, File{Name: filepath.Base(p), Size: info.Size()})
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		files = append(files, File{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// ParsePaths splits a drag-and-drop or typed path list. Paths are separated by
// whitespace, may be wrapped in single or double quotes, and may escape
// spaces with a backslash.
func ParsePaths(input string) []string {
	var (
		paths []string
		cur   strings.Builder
		quote rune
		esc   bool
		has   bool
	)
	flush := func() {
		if has {
			paths = append(paths, cur.String())
		}
		cur.Reset()
		has = false
	}

	for _, r := range input {
		switch {
		case esc:
			cur.WriteRune(r)
			esc = false
		case r == '\\' && quote != '\'':
			esc = true
			has = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			has = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
			has = true
		}
	}
	flush()
	return paths
}
