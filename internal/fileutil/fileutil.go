package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
)

// CopyResult describes a completed copy.
type CopyResult struct {
	Bytes   int64
	SHA256  string
	Skipped bool
}

// CopyFileAtomic streams src into dst through a temporary file in dst's
// directory and renames it into place once the byte count matches, so a
// crash never leaves a truncated part behind. The copy keeps src's
// modification time, which later runs use to skip unchanged files.
func CopyFileAtomic(src, dst string) (CopyResult, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return CopyResult{}, fmt.Errorf("stat source: %w", err)
	}
	if Unchanged(srcInfo, dst) {
		return CopyResult{Bytes: srcInfo.Size(), Skipped: true}, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return CopyResult{}, err
	}
	defer in.Close()

	pending, err := renameio.NewPendingFile(dst, renameio.WithPermissions(0o644))
	if err != nil {
		return CopyResult{}, fmt.Errorf("create pending file: %w", err)
	}
	defer func() { _ = pending.Cleanup() }()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(pending, hasher), in)
	if err != nil {
		return CopyResult{}, err
	}
	if written != srcInfo.Size() {
		return CopyResult{}, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return CopyResult{}, fmt.Errorf("replace %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return CopyResult{}, fmt.Errorf("preserve modification time: %w", err)
	}
	return CopyResult{Bytes: written, SHA256: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// Unchanged reports whether dst already matches src by size and
// modification time.
func Unchanged(src os.FileInfo, dst string) bool {
	info, err := os.Stat(dst)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Size() == src.Size() && info.ModTime().Equal(src.ModTime())
}
