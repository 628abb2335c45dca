package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/quest"
	store "github.com/jwebster45206/quest-engine/pkg/storage"
)

const (
	bundleBaseName = "quests"
	layoutFileName = "objects.yaml"
	messagesDir    = "messages"
	booksDir       = "books"
	assetExt       = ".txt"
)

var bundleExts = []string{".json", ".yaml", ".yml"}

// FileStore serves scene resources from <dataDir>/scenes/<scene>/.
type FileStore struct {
	dataDir string
	logger  *slog.Logger
}

func NewFileStore(dataDir string, logger *slog.Logger) *FileStore {
	if dataDir == "" {
		dataDir = "./data"
	}
	return &FileStore{dataDir: dataDir, logger: logger}
}

func (f *FileStore) sceneDir(scene string) (string, error) {
	if scene == "" || scene != filepath.Base(scene) || scene == "." || scene == ".." {
		return "", fmt.Errorf("invalid scene name %q", scene)
	}
	return filepath.Join(f.dataDir, "scenes", scene), nil
}

// bundlePath finds the scene's quest bundle. ok is false when none exists.
func (f *FileStore) bundlePath(scene string) (path string, ok bool, err error) {
	dir, err := f.sceneDir(scene)
	if err != nil {
		return "", false, err
	}
	for _, ext := range bundleExts {
		p := filepath.Join(dir, bundleBaseName+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true, nil
		}
	}
	return filepath.Join(dir, bundleBaseName+quest.FormatJSON.Ext()), false, nil
}

// Quest graph operations (filesystem-backed)

func (f *FileStore) LoadStoryGraph(ctx context.Context, scene string) (*quest.Graph, error) {
	path, ok, err := f.bundlePath(scene)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("scene %q: %w", scene, store.ErrSceneNotFound)
	}
	f.logger.Debug("Loading quest bundle", "scene", scene, "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quest bundle: %w", err)
	}
	g, err := quest.Decode(data, quest.FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", scene, err)
	}
	return g, nil
}

// SaveStoryGraph overwrites the scene's bundle, keeping its existing format,
// and creates the scene directory when needed.
func (f *FileStore) SaveStoryGraph(ctx context.Context, scene string, g *quest.Graph) error {
	if g == nil {
		return errors.New("graph cannot be nil")
	}
	path, _, err := f.bundlePath(scene)
	if err != nil {
		return err
	}
	data, err := quest.Encode(g, quest.FormatForPath(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create scene directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write quest bundle: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace quest bundle: %w", err)
	}
	f.logger.Debug("Quest bundle written", "scene", scene, "path", path, "bytes", len(data))
	return nil
}

func (f *FileStore) ListScenes(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.dataDir, "scenes"))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read scenes directory: %w", err)
	}

	var scenes []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok, _ := f.bundlePath(entry.Name()); ok {
			scenes = append(scenes, entry.Name())
		}
	}
	sort.Strings(scenes)
	return scenes, nil
}

// Narrative content (filesystem-backed)

func (f *FileStore) LoadMessages(ctx context.Context, scene string) (map[string]string, error) {
	return f.loadAssets(scene, messagesDir)
}

func (f *FileStore) LoadBooks(ctx context.Context, scene string) (map[string]string, error) {
	return f.loadAssets(scene, booksDir)
}

// loadAssets reads every .txt file under the scene subdirectory, keyed by
// file name without extension. A missing directory yields no assets.
func (f *FileStore) loadAssets(scene, sub string) (map[string]string, error) {
	dir, err := f.sceneDir(scene)
	if err != nil {
		return nil, err
	}
	root := filepath.Join(dir, sub)
	assets := make(map[string]string)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != assetExt {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			f.logger.Warn("Failed to read asset", "path", path, "error", err)
			return nil
		}
		assets[strings.TrimSuffix(d.Name(), assetExt)] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s for scene %q: %w", sub, scene, err)
	}
	return assets, nil
}

func (f *FileStore) LoadLayout(ctx context.Context, scene string) ([]byte, error) {
	dir, err := f.sceneDir(scene)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, layoutFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("layout for scene %q: %w", scene, store.ErrSceneNotFound)
		}
		return nil, fmt.Errorf("failed to read scene layout: %w", err)
	}
	return data, nil
}
