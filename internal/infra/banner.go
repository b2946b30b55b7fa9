package infra

import (
	"fmt"
	"io"
	"strings"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner writes the startup banner for long-running commands.
// mode is the command name ("serve", "poll").
func PrintBanner(w io.Writer, cfg *Config, mode string) {
	color := ColorGreen
	warning := ""

	switch {
	case cfg.Poll.Capture:
		color = ColorYellow
		warning = "RAW PAYLOAD CAPTURE ENABLED (contains positions)"
	case strings.HasPrefix(cfg.API.BaseURL, "http://"):
		color = ColorRed
		warning = "PLAIN HTTP ENDPOINT: COOKIES SENT UNENCRYPTED"
	}

	session := fmt.Sprintf("%s-%s / authuser=%d", cfg.Session.Language, cfg.Session.Country, cfg.Session.AuthUser)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s###########################################################%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s#                                                         #%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s#               📍 locshare location poller               #%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s#                                                         #%s\n", color, ColorReset)
	fmt.Fprintf(w, "%s#   MODE:    %-44s #%s\n", color, strings.ToUpper(mode), ColorReset)
	fmt.Fprintf(w, "%s#   SESSION: %-44s #%s\n", color, session, ColorReset)
	fmt.Fprintf(w, "%s#   EVERY:   %-44s #%s\n", color, cfg.PollInterval(), ColorReset)
	fmt.Fprintf(w, "%s#   VERSION: %-44s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Fprintf(w, "%s#                                                         #%s\n", color, ColorReset)

	if warning != "" {
		fmt.Fprintf(w, "%s#   ⚠️  %-49s #%s\n", ColorRed, warning, ColorReset)
	}

	fmt.Fprintf(w, "%s###########################################################%s\n", color, ColorReset)
	fmt.Fprintln(w)
}
