package tui

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/ports"
)

// Navigator hands create-page URLs to the desktop browser, or shows them
// as a notice when opening is disabled.
type Navigator struct {
	open     bool
	notifier ports.Notifier
	start    func(name string, args ...string) error
}

// NewNavigator returns a navigator. When open is false URLs are only shown.
func NewNavigator(open bool, notifier ports.Notifier) *Navigator {
	return &Navigator{open: open, notifier: notifier, start: startCommand}
}

func (n *Navigator) Navigate(url string) error {
	if !n.open {
		n.notifier.Notify(domain.Notice{Severity: domain.SeverityInfo, Title: "Create snippet", Text: url})
		return nil
	}
	name, args := browserCommand(runtime.GOOS, url)
	if err := n.start(name, args...); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	slog.Info("opened browser", "url", url)
	return nil
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

func startCommand(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

var _ ports.Navigator = (*Navigator)(nil)
