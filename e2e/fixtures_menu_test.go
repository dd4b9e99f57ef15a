//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// editorMenu describes a small editor whose actions leave marker files in
// the workspace. {{dir}} is replaced with the workspace path.
const editorMenu = `app: Editor
pid: 4242
menu:
  - title: File
    children:
      - title: New
        command: echo new > {{dir}}/new.txt
      - title: Save As…
        command: echo save-as > {{dir}}/save-as.txt
      - title: Save
        command: echo save > {{dir}}/save.txt
      - title: ""
      - title: Print
        enabled: false
  - title: Edit
    children:
      - title: Undo
        command: echo undo > {{dir}}/undo.txt
      - title: Find
        children:
          - title: Find Next
            command: echo find-next > {{dir}}/find-next.txt
  - title: Window
    children:
      - title: Minimize
`

// CreateTestWorkspace creates an isolated directory for one test
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	workspace, err := os.MkdirTemp("", "quickmenu-e2e-*")
	if err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	tf.workspace = workspace
	return workspace, nil
}

// WriteMenu writes a menu description into the workspace and returns its path
func (tf *TUITestFramework) WriteMenu(name, content string) (string, error) {
	path := filepath.Join(tf.workspace, name)
	content = strings.ReplaceAll(content, "{{dir}}", tf.workspace)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write menu description: %w", err)
	}
	return path, nil
}

// WriteConfig writes config.toml into the workspace and returns its path
func (tf *TUITestFramework) WriteConfig(content string) (string, error) {
	path := filepath.Join(tf.workspace, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// Marker reads a marker file written by a menu command
func (tf *TUITestFramework) Marker(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(tf.workspace, name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// startEditor prepares a workspace with the editor menu and starts the app
func startEditor(tf *TUITestFramework, args ...string) error {
	if _, err := tf.CreateTestWorkspace(); err != nil {
		return err
	}
	menuPath, err := tf.WriteMenu("editor.yaml", editorMenu)
	if err != nil {
		return err
	}
	return tf.StartApp(append([]string{"--menu", menuPath}, args...)...)
}
