package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"times-go/internal/times"
)

// maxAttachmentSize bounds files attached from the command line.
const maxAttachmentSize = 8 << 20

var kindByExt = map[string]times.FileKind{
	".png":  times.FileImage,
	".jpg":  times.FileImage,
	".jpeg": times.FileImage,
	".gif":  times.FileImage,
	".webp": times.FileImage,
	".txt":  times.FileText,
	".md":   times.FileText,
	".log":  times.FileText,
}

// loadAttachment reads path into a File. The kind is taken from the
// extension; anything unrecognised is binary.
func loadAttachment(path string) (*times.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("attachment: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("attachment %s is a directory", path)
	}
	if info.Size() > maxAttachmentSize {
		return nil, fmt.Errorf("attachment %s is %d bytes, limit is %d", path, info.Size(), maxAttachmentSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}

	kind, ok := kindByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		kind = times.FileBinary
	}
	return &times.File{Name: filepath.Base(path), Kind: kind, Data: data}, nil
}
