package utils

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := os.Getenv("HOME")
	defer os.Setenv("HOME", home)
	os.Setenv("HOME", "/home/krypt")
	os.Setenv("KRYPT_TEST_DIR", "/var/data")
	defer os.Unsetenv("KRYPT_TEST_DIR")

	assert.Equal(t, "/home/krypt/.gkrypt", expandPath("~/.gkrypt"))
	assert.Equal(t, "/var/data/keys", expandPath("$KRYPT_TEST_DIR/keys/"))
	assert.Equal(t, filepath.Clean("a/b"), expandPath("a//b"))
}

func TestDirectoryFlag(t *testing.T) {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	DataDirFlag.Apply(set)
	require.NoError(t, set.Parse([]string{"--datadir", "/tmp//krypt/"}))
	assert.Equal(t, "/tmp/krypt", set.Lookup("datadir").Value.String())
	assert.Equal(t, "--datadir \tuse for store all files", DataDirFlag.String())
}
