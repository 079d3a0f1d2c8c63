//go:build linux

package browser

func platformCommand(rawURL string) (string, []string) {
	return "xdg-open", []string{rawURL}
}
