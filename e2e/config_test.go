//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigExcludeHidesMenus(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	menuPath, err := tf.WriteMenu("editor.yaml", editorMenu)
	require.NoError(t, err)
	configPath, err := tf.WriteConfig(`exclude = ["window", "window → *"]`)
	require.NoError(t, err)

	require.NoError(t, tf.StartApp("--menu", menuPath, "--config", configPath))
	require.True(t, tf.Ready(), "Should render the overlay")
	require.True(t, tf.SeePlain("Edit"), "Capture should complete")

	tf.Type("minimize")
	require.True(t, tf.SeePlain("No matching menu items"), "Excluded items should not be searchable")
}

func TestConfigHotReload(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	menuPath, err := tf.WriteMenu("editor.yaml", editorMenu)
	require.NoError(t, err)
	configPath, err := tf.WriteConfig(`max_results = 50`)
	require.NoError(t, err)

	require.NoError(t, tf.StartApp("--menu", menuPath, "--config", configPath))
	require.True(t, tf.Ready(), "Should render the overlay")

	_, err = tf.WriteConfig(`max_results = 5`)
	require.NoError(t, err)
	require.True(t, tf.WaitForStatusMessage("Configuration reloaded", 3*time.Second), "Should pick up the edited config")
}
