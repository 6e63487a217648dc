package cmd

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnimab/Smart-vocabulary-book/internal/database"
	"github.com/nnimab/Smart-vocabulary-book/internal/service"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportAndStats(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")

	_, err := run(t, "migrate")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "vocabulary.db"))

	db, err := database.Open(database.Config{DataDir: dir})
	require.NoError(t, err)
	ctx := context.Background()
	user, err := service.NewUserService(db).CreateUser(ctx, service.UserInput{Name: "ann"})
	require.NoError(t, err)
	book, err := service.NewBookService(db, rand.New(rand.NewSource(1))).CreateBook(ctx, user.ID, service.BookInput{Name: "GRE"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	file := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(file, []byte("abate: to lessen\nbenign\tgentle\n"), 0o600))

	out, err := run(t, "import", "1", file)
	require.NoError(t, err)
	assert.Equal(t, "Imported 2 words into \"GRE\" (2 words total)\n", out)
	assert.Equal(t, int64(1), book.ID)

	out, err = run(t, "stats", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Statistics for ann")
	assert.Contains(t, out, "Words:          2 (0 known, 2 to learn)")

	_, err = run(t, "import", "1", filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = run(t, "stats", "abc")
	assert.EqualError(t, err, `invalid user id "abc"`)
}
