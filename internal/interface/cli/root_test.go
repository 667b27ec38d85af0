package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/neilberkman/whispapi/internal/core/config"
	"github.com/neilberkman/whispapi/internal/core/spinner"
	"github.com/neilberkman/whispapi/internal/core/transcribe"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag back to its default so tests sharing rootCmd
// do not leak state into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvEndpoint, "")
	t.Setenv(config.EnvFormat, "")
	t.Setenv(config.EnvLanguage, "")

	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func baseArgs(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	return dir, []string{
		"--config", filepath.Join(dir, "missing.toml"),
		"--db", filepath.Join(dir, "history.db"),
	}
}

func TestMissingFileArgumentPrintsUsage(t *testing.T) {
	_, args := baseArgs(t)
	_, _, err := execute(t, args...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errUsage))
	assert.Equal(t, "Usage: whispapi <file_path> [-f format] [-l language]", err.Error())
}

func TestTooManyArgumentsPrintsUsage(t *testing.T) {
	_, args := baseArgs(t)
	_, _, err := execute(t, append(args, "a.mp3", "b.mp3")...)
	assert.True(t, errors.Is(err, errUsage))
}

func TestFlagWithoutValueIsUsageError(t *testing.T) {
	_, args := baseArgs(t)
	_, _, err := execute(t, append(args, "a.mp3", "-f")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), usageLine)
}

func TestTranscribeEndToEnd(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = io.WriteString(w, "WEBVTT\n\nhello there")
	}))
	defer srv.Close()

	dir, args := baseArgs(t)
	input := filepath.Join(dir, "Clip.MP3")
	require.NoError(t, os.WriteFile(input, []byte("audio"), 0644))

	stdout, _, err := execute(t, append(args, input, "-f", "VTT", "-l", "FR", "--endpoint", srv.URL)...)
	require.NoError(t, err)

	assert.Equal(t, "vtt", gotQuery["output"][0])
	assert.Equal(t, "fr", gotQuery["language"][0])

	out := filepath.Join(dir, "Clip.vtt")
	assert.Contains(t, stdout, "Whispering... please wait, this can take some time...")
	assert.Contains(t, stdout, "WEBVTT\n\nhello there")
	assert.Contains(t, stdout, "Transcription saved to "+out)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "WEBVTT\n\nhello there", string(written))

	// The attempt is in the history
	stdout, _, err = execute(t, "history", "--json", "--db", filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	var entries []historyEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "completed", entries[0].Status)
	assert.Equal(t, "vtt", entries[0].Format)

	stdout, _, err = execute(t, "show", entries[0].ID[:8], "--db", filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "hello there")
}

func TestTranscribeFailureReportsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "model not loaded")
	}))
	defer srv.Close()

	dir, args := baseArgs(t)
	input := filepath.Join(dir, "talk.mp4")
	require.NoError(t, os.WriteFile(input, []byte("video"), 0644))

	_, stderr, err := execute(t, append(args, input, "--endpoint", srv.URL, "--no-history")...)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errReported))
	assert.Contains(t, stderr, "Transcription failed: ")
	assert.Contains(t, stderr, "Response data: model not loaded")

	_, statErr := os.Stat(filepath.Join(dir, "talk.txt"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, "history.db"))
	assert.True(t, os.IsNotExist(statErr), "--no-history must not create the database")
}

func TestValidationFailureMakesNoRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	dir, args := baseArgs(t)
	input := filepath.Join(dir, "photo.jpg")
	require.NoError(t, os.WriteFile(input, []byte("jpeg"), 0644))

	_, stderr, err := execute(t, append(args, input, "--endpoint", srv.URL)...)
	require.Error(t, err)
	assert.Contains(t, stderr, "Transcription failed: file is neither audio nor video")
	assert.False(t, called)
}

func TestSpinnersList(t *testing.T) {
	_, args := baseArgs(t)
	stdout, _, err := execute(t, append([]string{"spinners"}, args...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "equation")
	assert.Contains(t, stdout, "+ - × ÷ =")
	assert.Contains(t, stdout, "moon")
}

func TestSpinnerMessage(t *testing.T) {
	msg := spinnerMessage(config.DefaultMessage, transcribe.Request{FilePath: "/tmp/a & b.wav"}, nil)
	assert.Equal(t, "Whispering a & b.wav ()...", msg)

	msg = spinnerMessage("{{#broken", transcribe.Request{FilePath: "/tmp/x.mp3"}, nil)
	assert.Equal(t, "Whispering x.mp3...", msg)
}

func TestSelectorFor(t *testing.T) {
	assert.Equal(t, spinner.Index(3), selectorFor("3"))
	assert.Equal(t, spinner.Index(-1), selectorFor("-1"))
	assert.Equal(t, spinner.Named("moon"), selectorFor("moon"))
}
