// Package whisper manages the local faster-whisper transcription bridge and
// its model cache.
package whisper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ModelInfo describes one catalog entry and where its weights live on disk.
type ModelInfo struct {
	Name        string
	HFID        string
	SizeMB      int
	Description string
	Family      string
}

// modelCatalog lists supported models in presentation order. Standard models
// use faster-whisper built-in names; distil models name explicit HuggingFace
// repos and transcribe to English only.
var modelCatalog = []ModelInfo{
	{Name: "tiny", HFID: "tiny", SizeMB: 75, Description: "Fastest, multilingual, lower quality", Family: "whisper"},
	{Name: "base", HFID: "base", SizeMB: 145, Description: "Multilingual, good balance", Family: "whisper"},
	{Name: "small", HFID: "small", SizeMB: 488, Description: "Multilingual, better quality", Family: "whisper"},
	{Name: "medium", HFID: "medium", SizeMB: 1530, Description: "Multilingual, high quality", Family: "whisper"},
	{Name: "large-v3", HFID: "large-v3", SizeMB: 3094, Description: "Multilingual, best quality", Family: "whisper"},
	{Name: "turbo", HFID: "turbo", SizeMB: 1620, Description: "Multilingual, fast + good quality", Family: "whisper"},
	{Name: "distil-small.en", HFID: "Systran/faster-distil-whisper-small.en", SizeMB: 166, Description: "6x faster, English input/output only", Family: "distil-whisper"},
	{Name: "distil-medium.en", HFID: "Systran/faster-distil-whisper-medium.en", SizeMB: 394, Description: "Fast, English input/output only", Family: "distil-whisper"},
	{Name: "distil-large-v2", HFID: "Systran/faster-distil-whisper-large-v2", SizeMB: 756, Description: "6x faster, multilingual in, English out", Family: "distil-whisper"},
	{Name: "distil-large-v3", HFID: "Systran/faster-distil-whisper-large-v3", SizeMB: 756, Description: "6x faster, multilingual in, English out", Family: "distil-whisper"},
}

// Models returns the model catalog in presentation order.
func Models() []ModelInfo {
	out := make([]ModelInfo, len(modelCatalog))
	copy(out, modelCatalog)
	return out
}

// LookupModel finds a catalog entry by name.
func LookupModel(name string) (ModelInfo, bool) {
	for _, m := range modelCatalog {
		if m.Name == name {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// CacheDir returns the HuggingFace hub cache directory holding model weights.
func CacheDir() string {
	if hfHome := strings.TrimSpace(os.Getenv("HF_HOME")); hfHome != "" {
		return filepath.Join(hfHome, "hub")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", "huggingface", "hub")
}

// CachePath returns the expected on-disk cache directory for a model.
//
// Built-in faster-whisper names resolve to Systran repos, e.g. "base" lives
// under models--Systran--faster-whisper-base.
func CachePath(name string) (string, error) {
	info, ok := LookupModel(name)
	if !ok {
		return "", fmt.Errorf("unknown whisper model %q", name)
	}

	var cacheName string
	switch {
	case strings.Contains(info.HFID, "/"):
		cacheName = "models--" + strings.ReplaceAll(info.HFID, "/", "--")
	case info.HFID == "turbo":
		cacheName = "models--Systran--faster-whisper-large-v3-turbo"
	default:
		cacheName = "models--Systran--faster-whisper-" + info.HFID
	}

	cacheDir := CacheDir()
	if cacheDir == "" {
		return "", fmt.Errorf("unable to resolve model cache directory")
	}
	return filepath.Join(cacheDir, cacheName), nil
}

// IsDownloaded reports whether a model has a completed snapshot on disk.
func IsDownloaded(name string) bool {
	cachePath, err := CachePath(name)
	if err != nil {
		return false
	}

	snapshots, err := os.ReadDir(filepath.Join(cachePath, "snapshots"))
	if err != nil {
		return false
	}
	return len(snapshots) > 0
}

// SizeOnDisk returns the total bytes a downloaded model occupies.
func SizeOnDisk(name string) (int64, error) {
	cachePath, err := CachePath(name)
	if err != nil {
		return 0, err
	}

	var total int64
	err = filepath.Walk(cachePath, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}

// DeleteModel removes a model's cache directory and reports the bytes freed.
func DeleteModel(name string) (int64, error) {
	cachePath, err := CachePath(name)
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(cachePath); err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("model %q is not downloaded", name)
		}
		return 0, err
	}

	freed, err := SizeOnDisk(name)
	if err != nil {
		return 0, err
	}
	if err := os.RemoveAll(cachePath); err != nil {
		return 0, fmt.Errorf("delete model cache %q: %w", cachePath, err)
	}
	return freed, nil
}
