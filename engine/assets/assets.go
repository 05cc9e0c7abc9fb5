package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/anima-blend/engine/assets/loaders"
	"github.com/spaghettifunk/anima-blend/engine/core"
	"github.com/spaghettifunk/anima-blend/engine/renderer/metadata"
)

// ErrAssetNotFound is returned for names that are neither indexed nor on disk.
var ErrAssetNotFound = errors.New("asset not found")

type AssetInfo struct {
	// Path relative to the base directory, slash separated.
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

type AssetOp uint8

const (
	AssetCreated AssetOp = iota
	AssetModified
	AssetRemoved
)

func (op AssetOp) String() string {
	switch op {
	case AssetCreated:
		return "created"
	case AssetModified:
		return "modified"
	default:
		return "removed"
	}
}

// AssetEvent reports a change to an indexed asset.
type AssetEvent struct {
	Path string
	Type metadata.ResourceType
	Op   AssetOp
}

// changeBufferSize bounds the events kept between two drains of Changes.
const changeBufferSize = 64

type AssetManager struct {
	baseDir string
	watch   bool

	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	changes  chan AssetEvent
}

func NewAssetManager(config *core.AssetsConfig) (*AssetManager, error) {
	if config == nil {
		config = &core.DefaultConfig().Assets
	}
	if config.BaseDir == "" {
		err := fmt.Errorf("asset manager needs a base directory")
		core.LogError(err.Error())
		return nil, err
	}
	return &AssetManager{
		baseDir: filepath.Clean(config.BaseDir),
		watch:   config.Watch,
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
		changes: make(chan AssetEvent, changeBufferSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

/**
 * @brief Indexes the base directory, registers the built-in loaders and,
 * when watching, starts the fsnotify goroutine. A missing base directory
 * is created empty.
 */
func (am *AssetManager) Initialize() error {
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})

	if err := os.MkdirAll(am.baseDir, 0755); err != nil {
		return err
	}

	if am.watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		am.fsnotify = w
	}
	if err := am.watchRecursive(am.baseDir, false); err != nil {
		return err
	}
	if am.fsnotify != nil {
		go am.start()
	} else {
		close(am.stopped)
	}
	core.LogInfo("asset manager indexed %d assets under '%s'", am.Count(), am.baseDir)
	return nil
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) BaseDir() string { return am.baseDir }

// Changes delivers create, modify and remove events for indexed assets.
// Events are dropped, with a warning, when nobody drains the channel.
func (am *AssetManager) Changes() <-chan AssetEvent {
	return am.changes
}

func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// RegisterLoader replaces the loader used for assetType.
func (am *AssetManager) RegisterLoader(assetType metadata.ResourceType, loader Loader) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.registerLoader(assetType, loader)
}

func (am *AssetManager) Has(name string) bool {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	_, ok := am.assets[am.key(name)]
	return ok
}

func (am *AssetManager) Count() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Assets returns the indexed assets ordered by path.
func (am *AssetManager) Assets() []AssetInfo {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	out := make([]AssetInfo, 0, len(am.assets))
	for _, a := range am.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

/**
 * @brief Loads name, relative to the base directory, with the loader of its
 * resource type. Files created since the last index are picked up from disk.
 */
func (am *AssetManager) LoadAsset(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	key := am.key(name)
	path := filepath.Join(am.baseDir, filepath.FromSlash(key))

	am.mutex.RLock()
	asset, exists := am.assets[key]
	am.mutex.RUnlock()
	if !exists {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
		}
		am.handleFileEvent(path)
		am.mutex.RLock()
		asset, exists = am.assets[key]
		am.mutex.RUnlock()
		if !exists {
			return nil, fmt.Errorf("unsupported asset type for '%s'", name)
		}
	}
	if asset.Type != resourceType {
		return nil, fmt.Errorf("asset '%s' is %s, not %s", name, asset.Type, resourceType)
	}

	am.mutex.Lock()
	asset.LastLoaded = time.Now()
	am.assets[key] = asset
	loader, loaderExists := am.loaders[asset.Type]
	am.mutex.Unlock()
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", asset.Type)
	}

	res, err := loader.Load(path, resourceType, params)
	if err != nil {
		return nil, err
	}
	res.Name = key
	return res, nil
}

func (am *AssetManager) UnloadAsset(res *metadata.Resource) error {
	if res == nil {
		return nil
	}
	am.mutex.RLock()
	loader, ok := am.loaders[res.ResourceType]
	am.mutex.RUnlock()
	if !ok {
		return nil
	}
	return loader.Unload(res)
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleWatchEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err.Error())

		case <-am.done:
			if err := am.fsnotify.Close(); err != nil {
				core.LogError(err.Error())
			}
			return
		}
	}
}

func (am *AssetManager) handleWatchEvent(e fsnotify.Event) {
	s, err := os.Stat(e.Name)
	if err == nil && s.IsDir() {
		if e.Op&fsnotify.Create != 0 {
			if err := am.watchRecursive(e.Name, false); err != nil {
				core.LogWarn("asset watcher could not add '%s': %s", e.Name, err.Error())
			}
		}
		return
	}

	switch {
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if info, ok := am.removeAsset(e.Name); ok {
			am.emit(AssetEvent{Path: info.Path, Type: info.Type, Op: AssetRemoved})
		}
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, created, ok := am.handleFileEvent(e.Name)
		if !ok {
			return
		}
		op := AssetModified
		if created {
			op = AssetCreated
		}
		am.emit(AssetEvent{Path: info.Path, Type: info.Type, Op: op})
	}
}

func (am *AssetManager) emit(e AssetEvent) {
	select {
	case am.changes <- e:
	default:
		core.LogWarn("asset change queue full, dropping %s event for '%s'", e.Op, e.Path)
	}
}

// watchRecursive adds every directory under path to the watch list and
// indexes the files it finds.
func (am *AssetManager) watchRecursive(path string, unWatch bool) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if am.fsnotify == nil {
				return nil
			}
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// key maps a name or a path under the base directory to an index key.
func (am *AssetManager) key(name string) string {
	p := filepath.Clean(filepath.FromSlash(name))
	if rel, err := filepath.Rel(am.baseDir, p); err == nil && !strings.HasPrefix(rel, "..") {
		p = rel
	}
	return filepath.ToSlash(p)
}

// handleFileEvent indexes a created or modified file. created is false for
// files already in the index.
func (am *AssetManager) handleFileEvent(path string) (AssetInfo, bool, bool) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return AssetInfo{}, false, false
	}
	key := am.key(path)

	am.mutex.Lock()
	defer am.mutex.Unlock()
	_, existed := am.assets[key]
	info := AssetInfo{
		Path:       key,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	am.assets[key] = info
	return info, !existed, true
}

func (am *AssetManager) removeAsset(path string) (AssetInfo, bool) {
	key := am.key(path)
	am.mutex.Lock()
	defer am.mutex.Unlock()
	info, ok := am.assets[key]
	delete(am.assets, key)
	return info, ok
}

func determineAssetType(path string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".webp", ".tga":
		return metadata.ResourceTypeImage
	default:
		return metadata.ResourceTypeNone
	}
}
