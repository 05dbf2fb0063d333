// Package sidecar writes the tag list that accompanies a downloaded post.
package sidecar

import (
	"fmt"
	"strings"

	"github.com/veranemoloko/post-downloader/internal/domain"
	"github.com/veranemoloko/post-downloader/internal/storage"
)

// Options controls how tags are rendered.
type Options struct {
	RemoveUnderscores bool
	EscapeParentheses bool
}

// OptionsFrom picks the sidecar options out of batch settings.
func OptionsFrom(s domain.Settings) Options {
	return Options{
		RemoveUnderscores: s.RemoveTagUnderscores,
		EscapeParentheses: s.EscapeTagParentheses,
	}
}

var parenReplacer = strings.NewReplacer("(", `\(`, ")", `\)`)

// FormatTags joins tags with ", " in their original order.
func FormatTags(tags []string, opts Options) string {
	s := strings.Join(tags, ", ")
	if opts.RemoveUnderscores {
		s = strings.ReplaceAll(s, "_", " ")
	}
	if opts.EscapeParentheses {
		s = parenReplacer.Replace(s)
	}
	return s
}

// FileName returns "<post id>.txt".
func FileName(postID int64) string {
	return fmt.Sprintf("%d.txt", postID)
}

// Writer writes sidecar files into a FileStorage.
type Writer struct {
	storage *storage.FileStorage
	opts    Options
}

func NewWriter(s *storage.FileStorage, opts Options) *Writer {
	return &Writer{storage: s, opts: opts}
}

// Write stores the tag file for post under dir. It returns the path written,
// or "" with a nil error when the file already exists.
func (w *Writer) Write(dir string, post domain.Post) (string, error) {
	path := w.storage.Join(dir, FileName(post.ID))

	exists, err := w.storage.Exists(path)
	if err != nil {
		return "", err
	}
	if exists {
		return "", nil
	}

	if err := w.storage.WriteFile(path, []byte(FormatTags(post.Tags, w.opts))); err != nil {
		return "", fmt.Errorf("failed to write sidecar: %w", err)
	}
	return path, nil
}
