package credential

import "os"

// TokenSource names where a token was found.
type TokenSource string

const (
	SourceNone    TokenSource = "none"
	SourceEnv     TokenSource = "env"
	SourceKeyring TokenSource = "keyring"
	SourceHosts   TokenSource = "gh-hosts"
)

// Token is a resolved access token and its origin.
type Token struct {
	Value  string
	Source TokenSource
}

// ResolveOptions controls token lookup.
type ResolveOptions struct {
	// Host is the GitHub host the token is for, as returned by
	// HostForAPI. Empty means DefaultHost.
	Host string

	// HostsPath overrides the gh hosts file location.
	HostsPath string

	// SkipKeyring disables the system keyring lookup.
	SkipKeyring bool

	// LoadStored replaces LoadToken.
	LoadStored func(host string) (string, error)
}

// Resolve looks for a GitHub token in GH_TOKEN/GITHUB_TOKEN, then the
// system keyring entry for the host, then the gh hosts file. It never
// fails: a missing token yields SourceNone and callers continue
// unauthenticated.
func Resolve(opts ResolveOptions) Token {
	host := opts.Host
	if host == "" {
		host = DefaultHost
	}

	for _, env := range []string{"GH_TOKEN", "GITHUB_TOKEN"} {
		if v := os.Getenv(env); v != "" {
			return Token{Value: v, Source: SourceEnv}
		}
	}

	if !opts.SkipKeyring {
		load := opts.LoadStored
		if load == nil {
			load = LoadToken
		}
		if v, err := load(host); err == nil && v != "" {
			return Token{Value: v, Source: SourceKeyring}
		}
	}

	path := opts.HostsPath
	if path == "" {
		path = DefaultHostsPath()
	}
	if v, err := LoadHostsToken(path, host); err == nil && v != "" {
		return Token{Value: v, Source: SourceHosts}
	}

	return Token{Source: SourceNone}
}
