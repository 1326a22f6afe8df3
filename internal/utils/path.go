package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// PathResolver provides robust path resolution for the shellpredict
// binary: where its config file lives, and where it should persist
// on-disk state (history.json, hotcache.json, daily telemetry logs).
type PathResolver struct {
	executablePath string
	executableDir  string
	homeDir        string
	configDir      string
}

// NewPathResolver creates a new path resolver that determines the executable location.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}
	execDir := filepath.Dir(execPath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = "/tmp"
	}

	configDir := getConfigDir(homeDir)

	pr := &PathResolver{
		executablePath: execPath,
		executableDir:  execDir,
		homeDir:        homeDir,
		configDir:      configDir,
	}

	log.Debugf("PathResolver initialized: exec=%s, execDir=%s, configDir=%s",
		execPath, execDir, configDir)

	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform.
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", "shellpredict")
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "shellpredict")
		}
		return filepath.Join(homeDir, ".config", "shellpredict")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "shellpredict")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "shellpredict")
	default:
		return filepath.Join(homeDir, ".shellpredict")
	}
}

// GetStateDir resolves the directory holding persisted snapshots and
// telemetry logs. userSpecified, if absolute, wins outright; otherwise
// it falls back to configDir/state, creating it if needed.
func (pr *PathResolver) GetStateDir(userSpecified string) (string, error) {
	dir := filepath.Join(pr.configDir, "state")
	if filepath.IsAbs(userSpecified) {
		dir = userSpecified
	}
	if !pr.ensureDir(dir) {
		fallback := filepath.Join(os.TempDir(), "shellpredict")
		log.Warnf("State directory %s not usable, falling back to %s", dir, fallback)
		if !pr.ensureDir(fallback) {
			return "", os.ErrPermission
		}
		return fallback, nil
	}
	return dir, nil
}

// GetConfigPath returns the full path for a config file. It ensures the
// config directory exists and handles read-only filesystem issues.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	configPath := filepath.Join(pr.configDir, filename)
	if pr.ensureDir(pr.configDir) {
		return configPath, nil
	}

	fallbackDirs := []string{
		filepath.Join(pr.homeDir, ".shellpredict"),
		filepath.Join(os.TempDir(), "shellpredict"),
		pr.executableDir,
	}
	for _, dir := range fallbackDirs {
		if pr.ensureDir(dir) {
			path := filepath.Join(dir, filename)
			log.Warnf("Using fallback config location: %s", path)
			return path, nil
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath, nil
}

// ensureDir creates dir if needed and verifies it is writable.
func (pr *PathResolver) ensureDir(dir string) bool {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Debugf("Cannot create directory %s: %v", dir, err)
		return false
	}
	testFile := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		log.Debugf("Directory %s is not writable: %v", dir, err)
		return false
	}
	os.Remove(testFile)
	return true
}

// GetExecutableDir returns the directory containing the executable.
func (pr *PathResolver) GetExecutableDir() string { return pr.executableDir }

// GetExecutablePath returns the full path to the executable.
func (pr *PathResolver) GetExecutablePath() string { return pr.executablePath }

// GetConfigDir returns the config directory.
func (pr *PathResolver) GetConfigDir() string { return pr.configDir }

// ResolveRelativePath resolves a path relative to the executable directory.
func (pr *PathResolver) ResolveRelativePath(relativePath string) string {
	if filepath.IsAbs(relativePath) {
		return relativePath
	}
	return filepath.Join(pr.executableDir, relativePath)
}

// FindFileInPaths searches for a file in multiple possible locations.
func (pr *PathResolver) FindFileInPaths(filename string, searchPaths []string) (string, error) {
	for _, searchPath := range searchPaths {
		fullPath := filepath.Join(searchPath, filename)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", os.ErrNotExist
}

// GetRuntimeInfo returns debug information about the current runtime environment.
func (pr *PathResolver) GetRuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()

	info := map[string]string{
		"executable_path": pr.executablePath,
		"executable_dir":  pr.executableDir,
		"current_dir":     cwd,
		"home_dir":        pr.homeDir,
		"config_dir":      pr.configDir,
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
	}

	envVars := []string{"PWD", "HOME", "XDG_CONFIG_HOME", "APPDATA", "PATH"}
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			info["env_"+strings.ToLower(envVar)] = value
		}
	}
	return info
}
