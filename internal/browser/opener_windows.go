//go:build windows

package browser

func platformCommand(rawURL string) (string, []string) {
	return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
}
