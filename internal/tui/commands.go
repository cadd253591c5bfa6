package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clara-labs/walkthrough/internal/document"
)

// documentLoadedMsg carries the text of a document read from disk.
type documentLoadedMsg struct {
	path string
	text string
	err  error
}

var (
	userHomeDir  = os.UserHomeDir
	readDocument = document.Load
)

// loadDocumentJob reads path in the background. The job returns as soon as
// ctx ends; a read still in flight is abandoned and its result discarded.
func loadDocumentJob(path string) jobRunner {
	path = expandHome(strings.TrimSpace(path))
	return func(ctx context.Context) (tea.Msg, error) {
		if err := ctx.Err(); err != nil {
			return documentLoadedMsg{path: path, err: err}, err
		}
		type result struct {
			text string
			err  error
		}
		read := readDocument
		done := make(chan result, 1)
		go func() {
			text, err := read(path)
			done <- result{text: text, err: err}
		}()
		select {
		case <-ctx.Done():
			err := ctx.Err()
			return documentLoadedMsg{path: path, err: err}, err
		case r := <-done:
			if r.err != nil {
				return documentLoadedMsg{path: path, err: r.err}, r.err
			}
			return documentLoadedMsg{path: path, text: r.text}, nil
		}
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := userHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
