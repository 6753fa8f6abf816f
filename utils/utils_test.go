package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateParentDirIfNotExist(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "database", "nested", "event_logs.json")

	exists, err := FileExist(filepath.Dir(filePath))
	assert.Nil(t, err)
	assert.False(t, exists)

	err = CreateParentDirIfNotExist(filePath)
	assert.Nil(t, err)

	exists, err = FileExist(filepath.Dir(filePath))
	assert.Nil(t, err)
	assert.True(t, exists, "Should create every missing parent directory")

	exists, err = FileExist(filePath)
	assert.Nil(t, err)
	assert.False(t, exists, "Should not create the file itself")

	assert.Nil(t, os.WriteFile(filePath, []byte("[]"), 0600))
	exists, err = FileExist(filePath)
	assert.Nil(t, err)
	assert.True(t, exists)
}
