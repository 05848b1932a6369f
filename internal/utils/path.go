package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver finds the dataset file relative to the places the binary is usually run from
type PathResolver struct {
	executableDir string
	workDir       string
	configDir     string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}
	workDir, _ := os.Getwd()

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		workDir:       workDir,
		configDir:     configDirFor(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, workDir=%s, configDir=%s", pr.executableDir, pr.workDir, pr.configDir)
	return pr, nil
}

// configDirFor returns the appropriate config directory for the platform
func configDirFor(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "effserve")
		}
		return filepath.Join(homeDir, ".config", "effserve")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "effserve")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "effserve")
	default:
		return filepath.Join(homeDir, ".config", "effserve")
	}
}

// ConfigDir returns the platform config directory
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// Candidates lists where a dataset named by userPath is looked for, in order:
// the path itself when absolute, then relative to the working directory,
// the executable directory and the config directory.
func (pr *PathResolver) Candidates(userPath string) []string {
	if filepath.IsAbs(userPath) {
		return []string{userPath}
	}
	var out []string
	for _, base := range []string{pr.workDir, pr.executableDir, pr.configDir} {
		if base != "" {
			out = append(out, filepath.Join(base, userPath))
		}
	}
	return out
}

// ResolveDataFile returns the first candidate that is an existing regular file
func (pr *PathResolver) ResolveDataFile(userPath string) (string, error) {
	if userPath == "" {
		return "", fmt.Errorf("no dataset path given")
	}
	candidates := pr.Candidates(userPath)
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			log.Debugf("Found dataset: %s", path)
			return path, nil
		}
		log.Debugf("Dataset candidate not found: %s", path)
	}
	return "", fmt.Errorf("dataset %s not found in %v: %w", userPath, candidates, os.ErrNotExist)
}
