package credential

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceAccount = `{"type":"service_account","project_id":"demo"}`

func TestMaterialize(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	encoded := base64.StdEncoding.EncodeToString([]byte(serviceAccount))

	file, err := Materialize(ctx, encoded, dir)
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, dir, filepath.Dir(file.Path()))
	assert.True(t, strings.HasPrefix(filepath.Base(file.Path()), "mcp-bridge-credentials-"))
	assert.True(t, strings.HasSuffix(file.Path(), ".json"))

	data, err := os.ReadFile(file.Path())
	require.NoError(t, err)
	assert.Equal(t, serviceAccount, string(data))
	info, err := os.Stat(file.Path())
	require.NoError(t, err)
	assert.Zero(t, info.Mode().Perm()&0o077)

	require.NoError(t, file.Remove(ctx))
	_, err = os.Stat(file.Path())
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, file.Remove(ctx))
}

func TestMaterialize_UniquePaths(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	encoded := base64.StdEncoding.EncodeToString([]byte(serviceAccount))
	first, err := Materialize(ctx, encoded, dir)
	require.NoError(t, err)
	second, err := Materialize(ctx, encoded, dir)
	require.NoError(t, err)
	assert.NotEqual(t, first.Path(), second.Path())
	assert.NoError(t, first.Remove(ctx))
	assert.NoError(t, second.Remove(ctx))
}

func TestMaterialize_Inputs(t *testing.T) {
	var testCases = []struct {
		description string
		encoded     string
		expectNil   bool
		expectErr   bool
	}{
		{description: "empty", encoded: "", expectNil: true},
		{description: "whitespace", encoded: "  \n", expectNil: true},
		{description: "unpadded", encoded: base64.RawStdEncoding.EncodeToString([]byte("{}"))},
		{description: "trailing newline", encoded: base64.StdEncoding.EncodeToString([]byte(serviceAccount)) + "\n"},
		{description: "invalid", encoded: "not*base64!", expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			file, err := Materialize(context.Background(), testCase.encoded, t.TempDir())
			if testCase.expectErr {
				assert.ErrorIs(t, err, ErrInvalidEncoding)
				assert.Nil(t, file)
				return
			}
			require.NoError(t, err)
			if testCase.expectNil {
				assert.Nil(t, file)
				assert.Empty(t, file.Path())
				assert.NoError(t, file.Remove(context.Background()))
				return
			}
			require.NotNil(t, file)
			assert.NoError(t, file.Remove(context.Background()))
		})
	}
}
