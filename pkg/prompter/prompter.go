package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// One reader for the whole process so buffered input is never dropped
// between prompts.
var (
	in                 = bufio.NewReader(os.Stdin)
	out      io.Writer = os.Stdout
	terminal           = term.IsTerminal(int(os.Stdin.Fd()))
)

// SetIO redirects prompts, e.g. to drive interactive flows from tests.
// Passwords are read as plain lines when r is not a terminal.
func SetIO(r io.Reader, w io.Writer) {
	in = bufio.NewReader(r)
	out = w
	terminal = false
	if f, ok := r.(*os.File); ok {
		terminal = term.IsTerminal(int(f.Fd()))
	}
}

func readLine() (string, error) {
	input, err := in.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Fprint(out, label)
	return readLine()
}

// PromptPassword prompts user for a password (hidden input on a terminal)
func PromptPassword(label string) (string, error) {
	fmt.Fprint(out, label)

	if !terminal {
		return readLine()
	}

	bytepw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(out)

	return string(bytepw), nil
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	fmt.Fprint(out, label+" (y/n) ")
	input, err := readLine()
	if err != nil {
		return false, err
	}

	response := strings.ToLower(input)
	return response == "y" || response == "yes", nil
}

// PromptSelect prompts user to select from options
func PromptSelect(label string, options []string) (int, error) {
	fmt.Fprintln(out, label)
	for i, opt := range options {
		fmt.Fprintf(out, "%d) %s\n", i+1, opt)
	}

	fmt.Fprint(out, "Select option: ")
	input, err := readLine()
	if err != nil {
		return -1, err
	}

	var selection int
	if _, err := fmt.Sscanf(input, "%d", &selection); err != nil {
		return -1, err
	}

	if selection < 1 || selection > len(options) {
		return -1, fmt.Errorf("invalid selection")
	}

	return selection - 1, nil
}

// PromptKey asks until the answer is one of keys (case-insensitive) and
// returns it lowercased
func PromptKey(label string, keys ...string) (string, error) {
	for {
		fmt.Fprintf(out, "%s [%s] ", label, strings.Join(keys, "/"))
		input, err := readLine()
		if err != nil {
			return "", err
		}

		answer := strings.ToLower(input)
		for _, k := range keys {
			if answer == strings.ToLower(k) {
				return answer, nil
			}
		}
		fmt.Fprintf(out, "Please answer one of: %s\n", strings.Join(keys, ", "))
	}
}
