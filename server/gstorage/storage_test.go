package gstorage

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Daskott/helmetguard/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	data string
	read bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.read {
		return 0, errors.New("connection reset")
	}
	r.read = true
	return copy(p, r.data), nil
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "helmetguard-dev/event_logs.json", ObjectName("helmetguard-dev", "database/event_logs.json"))
	assert.Equal(t, "event_logs.json", ObjectName("", "/var/lib/helmetguard/event_logs.json"))
}

func TestReplaceFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "event_logs.json")

	require.Nil(t, replaceFile(dest, strings.NewReader(`[]`)))
	data, err := ioutil.ReadFile(dest)
	require.Nil(t, err)
	assert.Equal(t, `[]`, string(data))

	require.Nil(t, replaceFile(dest, strings.NewReader(`[{"type":"EMERGENCY"}]`)))
	data, err = ioutil.ReadFile(dest)
	require.Nil(t, err)
	assert.Equal(t, `[{"type":"EMERGENCY"}]`, string(data))

	files, err := ioutil.ReadDir(dir)
	require.Nil(t, err)
	assert.Len(t, files, 1, "Should not leave temp files behind")
}

func TestReplaceFileWithFailedCopy(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "event_logs.json")

	err := replaceFile(dest, &failingReader{data: `[{"type":"EMER`})
	assert.Error(t, err)

	exists, err := utils.FileExist(dest)
	require.Nil(t, err)
	assert.False(t, exists, "Should not leave a partial event log behind")

	files, err := ioutil.ReadDir(dir)
	require.Nil(t, err)
	assert.Empty(t, files)
}

func TestReplaceFileKeepsExistingFileOnFailedCopy(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "event_logs.json")
	require.Nil(t, replaceFile(dest, strings.NewReader(`[]`)))

	assert.Error(t, replaceFile(dest, &failingReader{data: `[{`}))

	data, err := ioutil.ReadFile(dest)
	require.Nil(t, err)
	assert.Equal(t, `[]`, string(data))
}
