package gen

import (
	"fmt"
	"os"
	"path/filepath"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// WriteFiles writes all generated files. With an empty outputDir every file goes next to its
// package; otherwise all files go to outputDir, prefixed by their package directory name.
func WriteFiles(files []GeneratedFile, outputDir string) ([]string, error) {
	written := make([]string, 0, len(files))

	for _, file := range files {
		dir, name := file.Dir, file.Filename
		if outputDir != "" {
			dir = outputDir
			name = filepath.Base(file.Dir) + "_" + file.Filename
		}

		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return written, fmt.Errorf("creating output directory: %w", err)
		}

		outputPath := filepath.Join(dir, name)
		if err := os.WriteFile(outputPath, file.Content, filePerm); err != nil {
			return written, fmt.Errorf("writing file %s: %w", name, err)
		}

		written = append(written, outputPath)
	}

	return written, nil
}
