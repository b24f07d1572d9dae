package setup

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
)

// shouldRecompile reports whether target is missing or older than any of the
// sources it is generated from
func shouldRecompile(target string, sources ...string) bool {
	targetInfo, err := os.Stat(target)
	if err != nil {
		return true
	}
	for _, source := range sources {
		sourceInfo, err := os.Stat(source)
		if err != nil {
			return true
		}
		if sourceInfo.ModTime().After(targetInfo.ModTime()) {
			return true
		}
	}
	return false
}

// DecodeJSONFile decodes the JSON filepath into the given interface
func DecodeJSONFile(filepath string, v interface{}) {
	file, err := os.Open(filepath)
	if err != nil {
		log.Fatalf("Error opening file %s: %v", filepath, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(v); err != nil {
		log.Fatalf("Error decoding file %s: %v", filepath, err)
	}
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy data: %w", err)
	}

	return nil
}
