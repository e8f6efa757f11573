package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiscoverCSVFiles recursively walks rootFolder and returns every file whose
// extension is ".csv" (case-insensitive). A missing folder is a fatal error
// surfaced to the caller before any Job is created.
func DiscoverCSVFiles(rootFolder string) ([]string, error) {
	info, err := os.Stat(rootFolder)
	if err != nil {
		return nil, fmt.Errorf("root folder %q: %w", rootFolder, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root folder %q is not a directory", rootFolder)
	}

	var files []string
	err = filepath.Walk(rootFolder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %q: %w", rootFolder, err)
	}
	return files, nil
}
