package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves a color mode (auto, on, off) for output written
// to w. NO_COLOR disables auto mode.
func colorEnabled(mode string, isTTY bool) (bool, error) {
	switch mode {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		return isTTY, nil
	}
	return false, fmt.Errorf("invalid color mode %q (want auto, on or off)", mode)
}
