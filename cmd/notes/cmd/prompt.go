package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	stdin = bufio.NewReader(os.Stdin)

	success = color.New(color.FgGreen).SprintfFunc()
	warning = color.New(color.FgYellow).SprintfFunc()
	failure = color.New(color.FgRed, color.Bold).SprintfFunc()
)

// promptLine asks for one line of input; def is returned for an empty answer.
func promptLine(w io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	line, err := stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return def, nil
	}
	return line, nil
}

// promptPassword reads a password without echo when stdin is a terminal.
func promptPassword(w io.Writer, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return promptLine(w, label, "")
	}
	fmt.Fprintf(w, "%s: ", label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// valueOrPrompt returns v, or prompts for it when v is empty.
func valueOrPrompt(w io.Writer, v, label string) (string, error) {
	if v != "" {
		return v, nil
	}
	return promptLine(w, label, "")
}
