package testutil

import (
	"crypto/md5"
	"encoding/hex"
	"math/rand"
	"path"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/stretchr/testify/require"
)

// Payload returns size bytes of deterministic pseudorandom data, so a
// failing assertion reproduces byte for byte.
func Payload(size int) []byte {
	data := make([]byte, size)
	r := rand.New(rand.NewSource(int64(size)))
	r.Read(data)
	return data
}

// MD5Hex returns the hex MD5 of data, the form services use for
// single-part entity tags.
func MD5Hex(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// WriteTree creates the given files under root on the filesystem,
// making parent directories as needed. Keys are slash-separated paths
// relative to root.
func WriteTree(t *testing.T, filesystem fs.Filesystem, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := path.Join(root, rel)
		require.NoError(t, filesystem.MkdirAll(path.Dir(full), 0o755))
		require.NoError(t, filesystem.WriteFile(full, []byte(content), 0o644))
	}
}
