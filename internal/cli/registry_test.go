package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = `Nome: Ana; Idade: 30; RG: 111; Entrada: 01/01/2024
Nome: Bia; Idade: 10; RG: 222; Entrada: 02/01/2024
Nome: Caio; Idade: 50; RG: 333; Entrada: 03/01/2023
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbPacientes.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleFile), 0o644))
	return path
}

func TestList_EmptyDatabase(t *testing.T) {
	out, err := runCLI(t, "", "--db", testDB(t), "list")
	require.NoError(t, err)
	assert.Equal(t, "(registry is empty)\n", out)
}

func TestImportThenList(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, "", "--db", db, "import", writeSample(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 patients from")
	assert.Contains(t, out, "as snapshot #1")

	out, err = runCLI(t, "", "--db", db, "list")
	require.NoError(t, err)
	assert.Equal(t, `1. Nome: Ana; Idade: 30; RG: 111; Entrada: 01/01/2024
2. Nome: Bia; Idade: 10; RG: 222; Entrada: 02/01/2024
3. Nome: Caio; Idade: 50; RG: 333; Entrada: 03/01/2023
`, out)
}

func TestReport(t *testing.T) {
	db := testDB(t)
	_, err := runCLI(t, "", "--db", db, "import", writeSample(t))
	require.NoError(t, err)

	out, err := runCLI(t, "", "--db", db, "report", "--by", "age")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bia", "Ana", "Caio"}, namesIn(out))

	out, err = runCLI(t, "", "--db", db, "report", "--by", "year")
	require.NoError(t, err)
	assert.Equal(t, "Caio", namesIn(out)[0])
}

func TestReport_InvalidKey(t *testing.T) {
	out, err := runCLI(t, "", "--db", testDB(t), "report", "--by", "weight")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [USAGE]")
}

func TestExport(t *testing.T) {
	db := testDB(t)
	_, err := runCLI(t, "", "--db", db, "import", writeSample(t))
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "out.txt")
	out, err := runCLI(t, "", "--db", db, "export", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 patients")

	raw, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, sampleFile, string(raw), "import then export is lossless")
}

func TestImport_MissingFile(t *testing.T) {
	out, err := runCLI(t, "", "--db", testDB(t), "import", filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [STORAGE_UNAVAILABLE]")
}

func TestList_UnreachableDatabase(t *testing.T) {
	out, err := runCLI(t, "", "--db", "/nonexistent/dir/clinic.db", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [STORAGE_UNAVAILABLE]")
}

func TestSnapshots(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, "", "--db", db, "snapshots")
	require.NoError(t, err)
	assert.Equal(t, "(no snapshots)\n", out)

	_, err = runCLI(t, "", "--db", db, "import", writeSample(t))
	require.NoError(t, err)

	out, err = runCLI(t, "", "--db", db, "--format", "json", "snapshots")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Snapshots []struct {
				Seq          int64  `json:"seq"`
				Session      string `json:"session"`
				PatientCount int    `json:"patient_count"`
			} `json:"snapshots"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Snapshots, 1)
	assert.Equal(t, int64(1), resp.Data.Snapshots[0].Seq)
	assert.Equal(t, "test-session", resp.Data.Snapshots[0].Session)
	assert.Equal(t, 3, resp.Data.Snapshots[0].PatientCount)
}

// namesIn extracts patient names from a numbered text listing.
func namesIn(out string) []string {
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		_, rest, ok := strings.Cut(line, "Nome: ")
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(rest, ";")
		names = append(names, name)
	}
	return names
}
