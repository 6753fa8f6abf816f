package utils

import (
	"os"
	"path/filepath"
)

func FileExist(filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

// CreateParentDirIfNotExist makes sure the directory holding 'filePath' exists.
func CreateParentDirIfNotExist(filePath string) error {
	return CreateDirIfNotExist(filepath.Dir(filePath))
}

func CreateDirIfNotExist(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return err
		}
	}

	return nil
}
