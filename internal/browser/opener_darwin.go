//go:build darwin

package browser

func platformCommand(rawURL string) (string, []string) {
	return "open", []string{rawURL}
}
