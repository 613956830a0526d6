package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"
)

// readPassword reads from the terminal without echo. Swapped in tests.
var readPassword = term.ReadPassword

var yes = []string{"y", "yes"}

// GetSimpleText shows prompt followed by a "> " marker on the next line and
// returns the trimmed answer. A final line without a newline still counts.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprintf(w, "%s\n> ", prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword reads a password without echo. Callers wipe the result.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := io.WriteString(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	_, _ = io.WriteString(w, "\n")
	return pw, err
}

// GetYesNo asks a [y/N] question; only "y" and "yes" mean yes.
func GetYesNo(reader *bufio.Reader, prompt string, w io.Writer) (bool, error) {
	answer, err := GetSimpleText(reader, prompt+" [y/N]", w)
	if err != nil {
		return false, err
	}
	return slices.Contains(yes, strings.ToLower(answer)), nil
}

func wipe(b []byte) { clear(b) }
