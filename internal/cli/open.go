package cli

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openURL hands url to the operating system's default handler, which for the
// install scheme is TREM-Lite itself.
func openURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func (a *app) openURL(url string) error {
	if a.deps.OpenURL != nil {
		return a.deps.OpenURL(url)
	}
	return openURL(url)
}
