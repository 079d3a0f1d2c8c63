//go:build !linux && !darwin && !windows

package browser

func platformCommand(rawURL string) (string, []string) {
	return "xdg-open", []string{rawURL}
}
