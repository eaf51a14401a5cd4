package utils

import (
	"bytes"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.conf")
	content := `# assembly run
input: /data/reads
output : /data/out
model: r941_min_hac_g507

trimONTAdapters: true
not a pair
minReadLen: 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		"input":           "/data/reads",
		"output":          "/data/out",
		"model":           "r941_min_hac_g507",
		"trimONTAdapters": "true",
		"minReadLen":      "500",
	}, cfg)
}

func TestWriteConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis-parameters.txt")
	keys := []string{"model", "medakaBatchSize"}
	require.NoError(t, WriteConfig(path, keys, Config{"model": "r1041_e82_400bps_sup_g615", "medakaBatchSize": "100"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "model: r1041_e82_400bps_sup_g615\nmedakaBatchSize: 100\n", string(data))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "100", cfg["medakaBatchSize"])
}

func TestCheckDeps(t *testing.T) {
	assert.NoError(t, CheckDeps())
	err := CheckDeps("definitely-not-a-real-program-xyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitely-not-a-real-program-xyz")
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "00-assembly"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "assembly.fasta"), []byte(">c\nACGT\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "00-assembly", "draft.fasta"), []byte(">d\nAC\n"), 0644))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "00-assembly", "draft.fasta"))
	require.NoError(t, err)
	assert.Equal(t, ">d\nAC\n", string(data))
}

func TestTouch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.fasta")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))
	require.NoError(t, Touch(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestCmdRunnerLogsAndParse(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	logPath := filepath.Join(t.TempDir(), "assembly.log")
	f, err := os.Create(logPath)
	require.NoError(t, err)

	r := CmdRunner{Logger: slog.New(slog.NewJSONHandler(f, nil))}
	require.NoError(t, r.Run("FLYE", "sampleA", exec.Command("true")))
	err = r.Run("MEDAKA", "sampleA", exec.Command("false"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEDAKA failed for sampleA")
	require.NoError(t, f.Close())

	entries, err := ParseLogFile(logPath)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.True(t, StageHasCompleted(entries, "FLYE", "sampleA"))
	assert.False(t, StageHasCompleted(entries, "MEDAKA", "sampleA"))
	assert.Equal(t, StatusFailed, entries[3].Status)
}

func TestSampleProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info(LogMsg, "PROGRAM", "PORECHOP", "SAMPLE", "b", "STATUS", StatusStarted)
	logger.Info(LogMsg, "PROGRAM", "PORECHOP", "SAMPLE", "a", "STATUS", StatusStarted)
	logger.Info(LogMsg, "PROGRAM", "PORECHOP", "SAMPLE", "b", "STATUS", StatusCompleted)
	logger.Info(LogMsg, "PROGRAM", "FLYE", "SAMPLE", "b", "STATUS", StatusStarted)
	logger.Info("unrelated", "PROGRAM", "FLYE", "SAMPLE", "b", "STATUS", StatusFailed)

	path := filepath.Join(t.TempDir(), "assembly.log")
	require.NoError(t, os.WriteFile(path, []byte(buf.String()+"not json\n"), 0644))

	entries, err := ParseLogFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	samples, progress := SampleProgress(entries)
	assert.Equal(t, []string{"b", "a"}, samples)
	require.Len(t, progress["b"], 2)
	assert.Equal(t, "PORECHOP", progress["b"][0].Program)
	assert.Equal(t, StatusCompleted, progress["b"][0].Status)
	assert.Equal(t, "FLYE", progress["b"][1].Program)
	assert.Equal(t, StatusStarted, progress["b"][1].Status)
	assert.True(t, strings.HasPrefix(progress["a"][0].Status, "START"))
}
