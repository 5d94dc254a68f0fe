package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ConfigDir is where generated viewer configs are stored by default
const ConfigDir = "configs"

// GenerateConfigPath creates a timestamped config filename inside dir
func GenerateConfigPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("multifocus_%s.yaml", timestamp))
}

// FindLatestConfig finds the most recent config file in dir
func FindLatestConfig(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read config directory: %w", err)
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var configs []candidate
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		configs = append(configs, candidate{filepath.Join(dir, name), info.ModTime()})
	}

	if len(configs) == 0 {
		return "", fmt.Errorf("no config files found in %s", dir)
	}

	// Sort by modification time (newest first)
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].modTime.After(configs[j].modTime)
	})

	return configs[0].path, nil
}
