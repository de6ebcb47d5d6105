package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"
)

// readSecret reads a secret without echo. ZKVAULT_PASSWORD wins when set, for scripting.
func readSecret(prompt string) (string, error) {
	if s := os.Getenv("ZKVAULT_PASSWORD"); s != "" {
		return s, nil
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(secret) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(secret), nil
}

// readNewSecret reads a secret twice and requires both to match. It always prompts.
func readNewSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Fprint(os.Stderr, "Confirm password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(first) == 0 {
		return "", errors.New("password must not be empty")
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
