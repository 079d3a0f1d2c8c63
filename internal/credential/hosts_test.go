package credential

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHosts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadHostsToken(t *testing.T) {
	tests := []struct {
		name    string
		content string
		host    string
		want    string
	}{
		{
			name: "gh hosts file",
			content: `github.com:
    user: octocat
    oauth_token: gho_abc123
    git_protocol: https
`,
			want: "gho_abc123",
		},
		{
			name: "prefers github.com over other hosts",
			content: `ghe.example.com:
    oauth_token: gho_enterprise
github.com:
    oauth_token: gho_public
`,
			want: "gho_public",
		},
		{
			name: "falls back to first other host",
			content: `ghe.example.com:
    oauth_token: gho_enterprise
`,
			want: "gho_enterprise",
		},
		{
			name: "enterprise host from the api url",
			content: `github.com:
    oauth_token: gho_public
ghe.example.com:
    oauth_token: gho_enterprise
`,
			host: "ghe.example.com",
			want: "gho_enterprise",
		},
		{
			name: "fallback keeps file order",
			content: `zeta.example.com:
    oauth_token: gho_zeta
alpha.example.com:
    oauth_token: gho_alpha
`,
			want: "gho_zeta",
		},
		{
			name:    "tab indented file falls back to line scan",
			content: "github.com:\n\toauth_token: gho_scanned\n",
			want:    "gho_scanned",
		},
		{
			name:    "no token field",
			content: "github.com:\n    user: octocat\n",
			want:    "",
		},
		{
			name:    "empty file",
			content: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := tt.host
			if host == "" {
				host = DefaultHost
			}
			got, err := LoadHostsToken(writeHosts(t, tt.content), host)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadHostsToken_MissingFile(t *testing.T) {
	got, err := LoadHostsToken(filepath.Join(t.TempDir(), "missing.yml"), DefaultHost)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHostForAPI(t *testing.T) {
	assert.Equal(t, "github.com", HostForAPI("https://api.github.com"))
	assert.Equal(t, "github.com", HostForAPI("https://API.github.com/"))
	assert.Equal(t, "ghe.example.com", HostForAPI("https://ghe.example.com/api/v3"))
	assert.Equal(t, "ghe.example.com", HostForAPI("https://api.ghe.example.com"))
	assert.Equal(t, "127.0.0.1", HostForAPI("http://127.0.0.1:8080"))
	assert.Equal(t, "github.com", HostForAPI(""))
}

func TestScanHostsToken_TakesFirstMatch(t *testing.T) {
	data := []byte("a: b\n  oauth_token: first\n  oauth_token: second\n")
	assert.Equal(t, "first", scanHostsToken(data))
}

func TestResolve_Precedence(t *testing.T) {
	hosts := writeHosts(t, "github.com:\n    oauth_token: from_hosts\n")

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("GH_TOKEN", "")
		t.Setenv("GITHUB_TOKEN", "from_env")
		tok := Resolve(ResolveOptions{
			HostsPath:  hosts,
			LoadStored: func(string) (string, error) { return "from_keyring", nil },
		})
		assert.Equal(t, Token{Value: "from_env", Source: SourceEnv}, tok)
	})

	t.Run("keyring before hosts", func(t *testing.T) {
		t.Setenv("GH_TOKEN", "")
		t.Setenv("GITHUB_TOKEN", "")
		var asked string
		tok := Resolve(ResolveOptions{
			HostsPath: hosts,
			LoadStored: func(host string) (string, error) {
				asked = host
				return "from_keyring", nil
			},
		})
		assert.Equal(t, Token{Value: "from_keyring", Source: SourceKeyring}, tok)
		assert.Equal(t, DefaultHost, asked)
	})

	t.Run("hosts when keyring is empty", func(t *testing.T) {
		t.Setenv("GH_TOKEN", "")
		t.Setenv("GITHUB_TOKEN", "")
		tok := Resolve(ResolveOptions{
			HostsPath:  hosts,
			LoadStored: func(string) (string, error) { return "", ErrNoStoredToken },
		})
		assert.Equal(t, Token{Value: "from_hosts", Source: SourceHosts}, tok)
	})

	t.Run("enterprise host picks its own hosts entry", func(t *testing.T) {
		t.Setenv("GH_TOKEN", "")
		t.Setenv("GITHUB_TOKEN", "")
		both := writeHosts(t, "github.com:\n    oauth_token: public\nghe.example.com:\n    oauth_token: enterprise\n")
		tok := Resolve(ResolveOptions{
			Host:        HostForAPI("https://ghe.example.com/api/v3"),
			HostsPath:   both,
			SkipKeyring: true,
		})
		assert.Equal(t, Token{Value: "enterprise", Source: SourceHosts}, tok)
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv("GH_TOKEN", "")
		t.Setenv("GITHUB_TOKEN", "")
		tok := Resolve(ResolveOptions{
			HostsPath:   filepath.Join(t.TempDir(), "missing.yml"),
			SkipKeyring: true,
		})
		assert.Equal(t, SourceNone, tok.Source)
		assert.Empty(t, tok.Value)
	})
}
