package proctitle

import (
	"errors"
	"os"
	"strings"
)

const maxNameLen = 15

// prepare validates title, rewrites os.Args[0] and returns the name clipped
// to what the kernel will keep.
func prepare(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errors.New("empty process title")
	}
	if len(os.Args) > 0 {
		os.Args[0] = title
	}
	if len(title) > maxNameLen {
		title = title[:maxNameLen]
	}
	return title, nil
}
