package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() (string, error) {
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	return string(pw), err
}

// readLine prints a prompt and reads a single trimmed line. A partial line at
// EOF is still returned.
func (a *App) readLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(a.out, prompt); err != nil {
		return "", err
	}
	line, err := a.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads a password without echo.
func (a *App) readSecret(prompt string) (string, error) {
	if _, err := fmt.Fprint(a.out, prompt); err != nil {
		return "", err
	}
	pw, err := readPassword()
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return pw, nil
}

// confirm asks a yes/no question; only an explicit "y"/"yes" confirms.
func (a *App) confirm(prompt string) bool {
	answer, err := a.readLine(prompt + " (y/N) ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}
