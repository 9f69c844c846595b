package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// fileEnvelope is the on-disk form of one key.
type fileEnvelope struct {
	Key     string `json:"key"`
	Version int64  `json:"version"`
	Value   []byte `json:"value"`
}

// seqFile holds the last version handed out. It outlives deleted keys, so a
// version is never reused after a restart.
const seqFile = "version.seq"

// FileStore keeps one JSON file per key under a data directory.
// Compare-and-swap is serialized within the process; the directory must not be
// shared by two running servers.
type FileStore struct {
	mu      sync.Mutex
	dataDir string
	seq     int64
}

// NewFileStore creates the data directory if needed and recovers the version counter.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fs := &FileStore{dataDir: dataDir}
	envs, err := fs.readAll()
	if err != nil {
		return nil, err
	}
	for _, env := range envs {
		if env.Version > fs.seq {
			fs.seq = env.Version
		}
	}
	stored, err := fs.readSeq()
	if err != nil {
		return nil, err
	}
	if stored > fs.seq {
		fs.seq = stored
	}
	return fs, nil
}

func (f *FileStore) Get(ctx context.Context, key string) (*Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	env, err := f.read(key)
	if err != nil {
		return nil, err
	}
	return &Entry{Key: key, Value: env.Value, Version: env.Version}, nil
}

func (f *FileStore) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var current int64
	env, err := f.read(key)
	switch {
	case err == nil:
		current = env.Version
	case errors.Is(err, ErrNotFound):
	default:
		return 0, err
	}
	if current != expectedVersion {
		return 0, ErrVersionConflict
	}

	version, err := f.nextVersion()
	if err != nil {
		return 0, err
	}
	data, err := json.Marshal(fileEnvelope{Key: key, Version: version, Value: value})
	if err != nil {
		return 0, fmt.Errorf("failed to encode entry: %w", err)
	}
	if err := f.writeFile(f.path(key), data); err != nil {
		return 0, err
	}
	return version, nil
}

// nextVersion bumps the counter and persists it before the entry is written.
// The stored value is re-read first in case another handle moved it on.
func (f *FileStore) nextVersion() (int64, error) {
	stored, err := f.readSeq()
	if err != nil {
		return 0, err
	}
	next := max(f.seq, stored) + 1
	if err := f.writeFile(filepath.Join(f.dataDir, seqFile), []byte(strconv.FormatInt(next, 10))); err != nil {
		return 0, err
	}
	f.seq = next
	return next, nil
}

func (f *FileStore) readSeq() (int64, error) {
	data, err := os.ReadFile(filepath.Join(f.dataDir, seqFile))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read version counter: %w", err)
	}
	seq, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt version counter: %w", err)
	}
	return seq, nil
}

// writeFile writes to a temp file and renames it so readers never see a torn file.
func (f *FileStore) writeFile(path string, data []byte) error {
	tmp := filepath.Join(f.dataDir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit file: %w", err)
	}
	return nil
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (f *FileStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	envs, err := f.readAll()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(envs))
	for _, env := range envs {
		if strings.HasPrefix(env.Key, prefix) {
			keys = append(keys, env.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(f.dataDir)
	return err
}

func (f *FileStore) Close() error { return nil }

// GetLocalPath returns the filesystem path for a key
func (f *FileStore) GetLocalPath(key string) string {
	return f.path(key)
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dataDir, encodeKey(key)+".json")
}

func (f *FileStore) read(key string) (*fileEnvelope, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("corrupt entry file for %s: %w", key, err)
	}
	return &env, nil
}

func (f *FileStore) readAll() ([]fileEnvelope, error) {
	matches, err := filepath.Glob(filepath.Join(f.dataDir, "*.json"))
	if err != nil {
		return nil, err
	}
	envs := make([]fileEnvelope, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", m, err)
		}
		var env fileEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("corrupt entry file %s: %w", m, err)
		}
		envs = append(envs, env)
	}
	return envs, nil
}

// encodeKey maps an arbitrary key (car names contain spaces) onto a safe file name.
func encodeKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16])
}
