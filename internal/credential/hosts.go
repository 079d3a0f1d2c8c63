package credential

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// DefaultHost is the host of the public GitHub API.
const DefaultHost = "github.com"

// hostEntry is the subset of a gh hosts.yml host block we read.
type hostEntry struct {
	OAuthToken string `yaml:"oauth_token"`
	User       string `yaml:"user"`
}

// HostForAPI maps a REST API root to the host name gh uses as the key in
// its hosts file: https://api.github.com is github.com and
// https://ghe.example.com/api/v3 is ghe.example.com. An unparsable URL
// yields DefaultHost.
func HostForAPI(baseURL string) string {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Hostname() == "" {
		return DefaultHost
	}
	host := strings.ToLower(u.Hostname())
	if host == "api."+DefaultHost {
		return DefaultHost
	}
	return strings.TrimPrefix(host, "api.")
}

// DefaultHostsPath returns the gh CLI hosts file location, honoring
// GH_CONFIG_DIR and XDG_CONFIG_HOME the same way gh does.
func DefaultHostsPath() string {
	if dir := os.Getenv("GH_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, "hosts.yml")
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gh", "hosts.yml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gh", "hosts.yml")
}

// LoadHostsToken returns the OAuth token stored in a gh hosts file for
// host, falling back to the first host in the file that has one.
// A missing file yields an empty token and no error. Parsing is best
// effort: a file that is not valid YAML is scanned line by line and the
// first "oauth_token: value" line wins.
func LoadHostsToken(path, host string) (string, error) {
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading hosts file %s: %w", path, err)
	}

	if token, ok := parseHostsYAML(data, host); ok {
		return token, nil
	}
	return scanHostsToken(data), nil
}

// parseHostsYAML decodes the hosts file as a host -> entry mapping and
// returns the token for host, or else the first token in document order.
// It reports false when the data is not in that shape or holds no token.
func parseHostsYAML(data []byte, host string) (string, bool) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return "", false
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return "", false
	}

	first := ""
	for i := 0; i+1 < len(root.Content); i += 2 {
		var entry hostEntry
		if err := root.Content[i+1].Decode(&entry); err != nil || entry.OAuthToken == "" {
			continue
		}
		if strings.EqualFold(root.Content[i].Value, host) {
			return entry.OAuthToken, true
		}
		if first == "" {
			first = entry.OAuthToken
		}
	}
	return first, first != ""
}

// scanHostsToken returns the value of the first line carrying an
// oauth_token field, or "" if none is found.
func scanHostsToken(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "oauth_token") {
			continue
		}
		_, value, found := strings.Cut(line, ": ")
		if !found {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return ""
}
