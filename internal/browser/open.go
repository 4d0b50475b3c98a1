// Package browser opens URLs with the operating system's default handler.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// SystemOpener launches the platform URL handler (xdg-open, open, or
// rundll32) without waiting for it to exit.
type SystemOpener struct {
	// Command overrides the handler binary, mostly for tests.
	Command string
}

// Open starts the handler for url.
func (o SystemOpener) Open(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("empty url")
	}

	name, args := o.command(url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func (o SystemOpener) command(url string) (string, []string) {
	if o.Command != "" {
		return o.Command, []string{url}
	}
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// Recorder collects opened URLs instead of launching anything.
type Recorder struct {
	URLs []string
	Err  error
}

// Open records url.
func (r *Recorder) Open(url string) error {
	if r.Err != nil {
		return r.Err
	}
	r.URLs = append(r.URLs, url)
	return nil
}
