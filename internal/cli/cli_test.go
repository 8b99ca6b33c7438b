package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/pgimport"
	"github.com/nao1215/pgimport/internal/config"
	"github.com/nao1215/pgimport/loader"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default, since cobra keeps parsed
// values in package variables between executions.
func resetFlags(t *testing.T) {
	t.Helper()

	for _, cmd := range []*cobra.Command{rootCmd, importCmd, planCmd, versionCmd} {
		for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				require.NoError(t, f.Value.Set(f.DefValue))
				f.Changed = false
			})
		}
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func countRows(t *testing.T, dbPath, table string) int {
	t.Helper()

	l, err := loader.NewSQLite(context.Background(), dbPath, loader.Options{})
	require.NoError(t, err)
	defer l.Close()

	var n int
	require.NoError(t, l.DB().QueryRow("SELECT COUNT(*) FROM "+loader.QuoteIdentifier(table)).Scan(&n))
	return n
}

func TestImportCommand_SQLite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Satışlar.csv", "id,name\n1,Ayşe\n2,Ömer\n")
	writeFile(t, dir, "config.json", `{"database": {"dbname": "unused"}}`)
	writeFile(t, dir, "notes.txt", "not data")
	dbPath := filepath.Join(t.TempDir(), "out.db")

	out, err := executeCommand(t, "import", "--dir", dir, "--target", "sqlite", "--sqlite-path", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Loaded 1 tables, 2 rows")
	assert.Contains(t, out, "satislar: 2 rows")
	assert.Equal(t, 2, countRows(t, dbPath, "satislar"))

	assert.NoFileExists(t, filepath.Join(dir, "Satışlar.csv"))
	assert.FileExists(t, filepath.Join(dir, pgimport.UnprocessedDir, "Satışlar.csv"))
	assert.FileExists(t, filepath.Join(dir, pgimport.ProcessedDir, "satislar.csv"))
	assert.FileExists(t, filepath.Join(dir, "config.json"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))

	logs, err := filepath.Glob(filepath.Join(dir, "data_import_*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestImportCommand_DefaultsToRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "users.tsv", "id\tactive\n1\ttrue\n")
	dbPath := filepath.Join(t.TempDir(), "out.db")

	out, err := executeCommand(t, "--dir", dir, "--target", "sqlite", "--sqlite-path", dbPath,
		"--no-move", "--log-file", "", "--export-compression", "gz")
	require.NoError(t, err)

	assert.Contains(t, out, "Loaded 1 tables, 1 rows")
	assert.FileExists(t, filepath.Join(dir, "users.tsv"))
	assert.FileExists(t, filepath.Join(dir, pgimport.ProcessedDir, "users.csv.gz"))
	assert.NoDirExists(t, filepath.Join(dir, pgimport.UnprocessedDir))
}

func TestImportCommand_Replace(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "out.db")

	for range 2 {
		dir := t.TempDir()
		writeFile(t, dir, "items.csv", "id\n1\n2\n3\n")
		_, err := executeCommand(t, "import", "--dir", dir, "--target", "sqlite", "--sqlite-path", dbPath,
			"--log-file", "", "--replace", "--chunk-size", "2")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, countRows(t, dbPath, "items"))
}

func TestImportCommand_Failures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.csv", "id\n1\n")
	writeFile(t, dir, "bad.json", `[1, 2]`)
	dbPath := filepath.Join(t.TempDir(), "out.db")

	out, err := executeCommand(t, "import", "--dir", dir, "--target", "sqlite", "--sqlite-path", dbPath, "--log-file", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, pgimport.ErrInvalidData)
	assert.Contains(t, out, "Loaded 1 tables, 1 rows")
	assert.Contains(t, out, "FAILED")
	assert.Equal(t, 1, countRows(t, dbPath, "good"))
}

func TestImportCommand_Errors(t *testing.T) {
	dataDir := t.TempDir()
	writeFile(t, dataDir, "a.csv", "id\n1\n")
	sqlite := []string{"--target", "sqlite", "--sqlite-path", filepath.Join(t.TempDir(), "out.db"), "--log-file", ""}

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{
			name:   "no data files",
			args:   append([]string{"import", "--dir", t.TempDir(), "--no-move"}, sqlite...),
			target: pgimport.ErrNoInputFiles,
		},
		{
			name:   "bzip2 export",
			args:   append([]string{"import", "--dir", dataDir, "--export-compression", "bz2"}, sqlite...),
			target: pgimport.ErrInvalidOption,
		},
		{
			name:   "unknown export compression",
			args:   append([]string{"import", "--dir", dataDir, "--export-compression", "rar"}, sqlite...),
			target: pgimport.ErrInvalidOption,
		},
		{
			name:   "unknown target",
			args:   []string{"import", "--dir", dataDir, "--target", "oracle", "--log-file", ""},
			target: loader.ErrUnknownDialect,
		},
		{
			name: "unexpected argument",
			args: append([]string{"import", "extra"}, sqlite...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
	assert.FileExists(t, filepath.Join(dataDir, "a.csv"), "failed runs leave the files in place")
}

func TestResolveDSN(t *testing.T) {
	noEnv := func(string) (string, bool) { return "", false }

	t.Run("flag wins", func(t *testing.T) {
		dsn, err := resolveDSN("postgres://x@h/db", filepath.Join(t.TempDir(), "missing.json"), noEnv)
		require.NoError(t, err)
		assert.Equal(t, "postgres://x@h/db", dsn)
	})

	t.Run("config file with environment on top", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "config.json",
			`{"database": {"host": "filehost", "port": 5433, "dbname": "dw", "user": "loader", "password": "pw"}}`)
		env := func(key string) (string, bool) {
			if key == "PGHOST" {
				return "envhost", true
			}
			return "", false
		}

		dsn, err := resolveDSN("", path, env)
		require.NoError(t, err)
		assert.Equal(t, "postgres://loader:pw@envhost:5433/dw?sslmode=prefer", dsn)
	})

	t.Run("environment only", func(t *testing.T) {
		env := func(key string) (string, bool) {
			if key == "PGDATABASE" {
				return "envdb", true
			}
			return "", false
		}
		dsn, err := resolveDSN("", filepath.Join(t.TempDir(), "missing.json"), env)
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost:5432/envdb?sslmode=prefer", dsn)
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := resolveDSN("", filepath.Join(t.TempDir(), "missing.json"), noEnv)
		assert.ErrorIs(t, err, config.ErrMissingDatabase)
	})

	t.Run("broken config", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "config.json", "{broken")
		_, err := resolveDSN("", path, noEnv)
		assert.Error(t, err)
	})
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Sales 2024.csv", "ID,Name,Paid\n1,Ayşe,true\n2,Ömer,false\n")

	out, err := executeCommand(t, "plan", dir, "--target", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, `CREATE TABLE IF NOT EXISTS "sales_2024" ("id" INTEGER, "name" TEXT, "paid" INTEGER);`)
	assert.Contains(t, out, "(2 rows)")
	assert.FileExists(t, filepath.Join(dir, "Sales 2024.csv"), "plan does not move files")

	out, err = executeCommand(t, "plan", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `("id" BIGINT, "name" TEXT, "paid" BOOLEAN)`)
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "pgimport "), out)
}

func TestResolveVersionInfo_LdflagsOverride(t *testing.T) {
	original := version
	defer func() { version = original }()

	version = "1.2.3"
	v, _, _ := resolveVersionInfo()
	assert.Equal(t, "1.2.3", v)
}
