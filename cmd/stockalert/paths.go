package main

import (
	"os"
	"path/filepath"
)

// stockalertHome returns the path to the stockalert home directory
// (~/.stockalert), creating it if needed.
func stockalertHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".stockalert")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func configPath() (string, error) {
	dir, err := stockalertHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func auditLogPath() (string, error) {
	dir, err := stockalertHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "audit.log"), nil
}
