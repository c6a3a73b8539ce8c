// Package upload screens file references against the picker's allow-list.
// Only names and sizes are inspected; file contents are never opened.
package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// MaxFileSize is the per-file cap.
const MaxFileSize = 10 * 1024 * 1024

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file exceeds 10MB limit")
	ErrEmptyName       = errors.New("file name is empty")
)

// allowed maps accepted extensions to the MIME group the picker advertises.
var allowed = map[string]string{
	".js":   "text/javascript",
	".jsx":  "text/javascript",
	".ts":   "text/javascript",
	".tsx":  "text/javascript",
	".py":   "text/python",
	".java": "text/java",
	".cs":   "text/csharp",
	".cpp":  "text/cpp",
	".c":    "text/cpp",
	".h":    "text/cpp",
	".php":  "text/php",
	".rb":   "text/ruby",
	".go":   "text/go",
	".rs":   "text/rust",
	".json": "application/json",
	".yml":  "text/yaml",
	".yaml": "text/yaml",
	".xml":  "text/xml",
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".txt":  "text/plain",
	".md":   "text/plain",
	".env":  "text/plain",
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusScanning Status = "scanning"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Ref is what the browser tells us about a picked file.
type Ref struct {
	Name string `json:"name" binding:"required"`
	Size int64  `json:"size"`
}

type File struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Status Status `json:"status"`
}

// HumanSize formats the size for the file list.
func (f File) HumanSize() string {
	return FormatSize(f.Size)
}

type Rejection struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Check validates a single reference.
func Check(ref Ref) error {
	name := strings.TrimSpace(ref.Name)
	if name == "" {
		return ErrEmptyName
	}
	if _, ok := allowed[extension(name)]; !ok {
		return fmt.Errorf("%s: %w", name, ErrUnsupportedType)
	}
	if ref.Size > MaxFileSize {
		return fmt.Errorf("%s: %w", name, ErrFileTooLarge)
	}
	return nil
}

// Accept splits refs into pending files and rejections, keeping input order.
func Accept(refs []Ref) ([]File, []Rejection) {
	var files []File
	var rejected []Rejection
	for _, ref := range refs {
		if err := Check(ref); err != nil {
			rejected = append(rejected, Rejection{Name: ref.Name, Reason: reason(err)})
			continue
		}
		files = append(files, File{
			ID:     uuid.NewString()[:8],
			Name:   filepath.Base(strings.TrimSpace(ref.Name)),
			Size:   ref.Size,
			Status: StatusPending,
		})
	}
	return files, rejected
}

// Remove drops the file with the given id.
func Remove(files []File, id string) []File {
	out := files[:0:0]
	for _, f := range files {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return out
}

// Extensions returns the accepted extensions, sorted, for the picker's accept attribute.
func Extensions() []string {
	exts := make([]string, 0, len(allowed))
	for ext := range allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// FormatSize renders a byte count using binary units.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	return humanize.IBytes(uint64(bytes))
}

func extension(name string) string {
	base := strings.ToLower(filepath.Base(name))
	// dotfiles like ".env" have no stem
	if base == ".env" {
		return base
	}
	return filepath.Ext(base)
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return ErrFileTooLarge.Error()
	case errors.Is(err, ErrUnsupportedType):
		return ErrUnsupportedType.Error()
	default:
		return err.Error()
	}
}
