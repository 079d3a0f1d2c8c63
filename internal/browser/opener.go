// Package browser opens URLs with the platform's default handler.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// ErrEmptyURL is returned when there is nothing to open.
var ErrEmptyURL = errors.New("no url to open")

// Opener launches the system browser.
type Opener struct {
	// Command overrides the platform handler. It may contain arguments;
	// the URL is appended as the last one.
	Command string

	log zerolog.Logger

	// start runs the command. Replaced in tests.
	start func(name string, args ...string) error
}

// NewOpener creates an Opener. An empty command selects $BROWSER or the
// platform default.
func NewOpener(command string, log zerolog.Logger) *Opener {
	o := &Opener{
		Command: command,
		log:     log.With().Str("component", "browser").Logger(),
	}
	o.start = o.startDetached
	return o
}

// Open asks the OS to open rawURL. It returns once the handler process has
// started; the handler's exit status is only logged.
func (o *Opener) Open(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrEmptyURL
	}
	if _, err := url.Parse(rawURL); err != nil {
		return fmt.Errorf("parsing url: %w", err)
	}

	name, args := o.findCommand(rawURL)
	o.log.Debug().Str("command", name).Str("url", rawURL).Msg("opening url")

	if err := o.start(name, args...); err != nil {
		return fmt.Errorf("opening %s: %w", rawURL, err)
	}
	return nil
}

// findCommand resolves the handler.
// Priority: configured command → $BROWSER → platform default.
func (o *Opener) findCommand(rawURL string) (string, []string) {
	if fields := strings.Fields(o.Command); len(fields) > 0 {
		return fields[0], append(fields[1:], rawURL)
	}
	if fields := strings.Fields(os.Getenv("BROWSER")); len(fields) > 0 {
		return fields[0], append(fields[1:], rawURL)
	}
	return platformCommand(rawURL)
}

func (o *Opener) startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			o.log.Warn().Err(err).Str("command", name).Msg("browser exited with error")
		}
	}()

	return nil
}
