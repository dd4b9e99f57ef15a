//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestMain(m *testing.M) {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Printf("Failed to get working directory: %v\n", err)
		os.Exit(1)
	}
	binPath = filepath.Join(dir, "quickmenu_e2e")

	build := exec.Command("go", "build", "-o", binPath, ".")
	build.Dir = ".."
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Printf("Failed to build quickmenu: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Remove(binPath)
	os.Exit(code)
}
