package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/thiremani/kmangle/parser"
	"github.com/vmihailenco/msgpack/v5"
)

var CACHE_ENV = "KMCACHE"
var SYMBOLS_DIR = "symbols"
var TABLE_FILE = "table.mp"
var HASH_FILE = ".hash"
var LOCK_FILE = ".lock"

// bump when symbolTable or the symbol encoding changes
const cacheSchema uint16 = 1

// keep this many entries, deleting older ones only past cacheMinAge
const cacheKeep = 256
const cacheMinAge = 7 * 24 * 60 * 60

// defaultCacheDir gets env variable KMCACHE
// if it is not set it falls back to the platform cache dir for windows, mac, linux
func defaultCacheDir() string {
	if env := os.Getenv(CACHE_ENV); env != "" {
		return env
	}

	homeDir, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, "kmangle")
		}
		return filepath.Join(homeDir, "AppData", "Local", "kmangle")
	case "darwin":
		return filepath.Join(homeDir, "Library", "Caches", "kmangle")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "kmangle")
		}
		return filepath.Join(homeDir, ".cache", "kmangle")
	}
}

// isHashDir returns true if name is an 8-char hex string (matches shortHash format).
func isHashDir(name string) bool {
	if len(name) != 8 {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

// symbolTable is what one cache entry holds: every symbol of one file.
type symbolTable struct {
	Schema  uint16
	File    string
	Symbols []parser.Symbol
}

// symbolCache stores symbol tables under <dir>/symbols/<shortHash>/.
// Entries are keyed by the file's name and contents, the length limit and
// the tool version. A file lock makes concurrent readers see either a
// complete entry or none.
type symbolCache struct {
	dir string
}

func openSymbolCache(dir string) (*symbolCache, error) {
	symDir := filepath.Join(dir, SYMBOLS_DIR)
	if err := os.MkdirAll(symDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &symbolCache{dir: symDir}, nil
}

// symbolKey returns the short hash (8 chars for the directory name) and the
// full hash (for the collision check) of one entry.
func symbolKey(file, src string, maxLen int) (shortHash, fullHash string) {
	h := sha256.New()
	h.Write([]byte(Version))
	h.Write([]byte{byte(cacheSchema >> 8), byte(cacheSchema)})
	h.Write([]byte(strconv.Itoa(maxLen)))
	h.Write([]byte{0})
	h.Write([]byte(filepath.Base(file)))
	h.Write([]byte{0})
	h.Write([]byte(src))
	fullHash = hex.EncodeToString(h.Sum(nil))
	return fullHash[:8], fullHash
}

func (c *symbolCache) lock() *flock.Flock {
	return flock.New(filepath.Join(c.dir, LOCK_FILE))
}

// Get returns the cached symbols of file, or false when there is no complete
// entry for this exact source and length limit.
func (c *symbolCache) Get(file, src string, maxLen int) ([]parser.Symbol, bool, error) {
	lock := c.lock()
	if err := lock.RLock(); err != nil {
		return nil, false, fmt.Errorf("acquire cache lock: %w", err)
	}
	defer lock.Unlock()

	shortHash, fullHash := symbolKey(file, src, maxLen)
	entryDir := filepath.Join(c.dir, shortHash)

	// the hash file is written last and acts as the completion marker
	storedHash, err := os.ReadFile(filepath.Join(entryDir, HASH_FILE))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if string(storedHash) != fullHash {
		return nil, false, nil
	}

	f, err := os.Open(filepath.Join(entryDir, TABLE_FILE))
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	var table symbolTable
	if err := msgpack.NewDecoder(f).Decode(&table); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", f.Name(), err)
	}
	if table.Schema != cacheSchema {
		return nil, false, nil
	}
	return table.Symbols, true, nil
}

// Put stores the symbols of file, replacing any entry with the same short
// hash, and prunes old entries.
func (c *symbolCache) Put(file, src string, maxLen int, syms []parser.Symbol) error {
	lock := c.lock()
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	defer lock.Unlock()

	shortHash, fullHash := symbolKey(file, src, maxLen)
	entryDir := filepath.Join(c.dir, shortHash)
	hashFile := filepath.Join(entryDir, HASH_FILE)

	// Hash collision or stale entry - rebuild
	if err := os.RemoveAll(entryDir); err != nil {
		return fmt.Errorf("remove stale entry: %w", err)
	}
	if err := os.MkdirAll(entryDir, 0755); err != nil {
		return fmt.Errorf("create entry dir: %w", err)
	}

	data, err := msgpack.Marshal(&symbolTable{Schema: cacheSchema, File: file, Symbols: syms})
	if err != nil {
		return fmt.Errorf("encode symbols of %s: %w", file, err)
	}
	if err := os.WriteFile(filepath.Join(entryDir, TABLE_FILE), data, 0644); err != nil {
		return fmt.Errorf("write symbol table: %w", err)
	}
	if err := os.WriteFile(hashFile, []byte(fullHash), 0644); err != nil {
		return fmt.Errorf("write hash file: %w", err)
	}

	cleanupOldEntries(c.dir, cacheKeep, cacheMinAge)
	return nil
}

// cleanupOldEntries removes old entry hash directories.
// Only deletes directories older than minAge AND keeps at least 'keep' most recent.
// This prevents deleting entries another process has just written.
func cleanupOldEntries(dir string, keep int, minAge int64) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) <= keep {
		return
	}

	type dirInfo struct {
		name  string
		mtime int64
	}
	var dirs []dirInfo
	for _, e := range entries {
		if e.IsDir() && isHashDir(e.Name()) {
			if info, err := e.Info(); err == nil {
				dirs = append(dirs, dirInfo{e.Name(), info.ModTime().Unix()})
			}
		}
	}

	if len(dirs) <= keep {
		return
	}

	// Sort by mtime ascending (oldest first), remove oldest if older than minAge
	cutoff := time.Now().Unix() - minAge
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].mtime < dirs[j].mtime })
	for i := 0; i < len(dirs)-keep; i++ {
		if dirs[i].mtime < cutoff {
			path := filepath.Join(dir, dirs[i].name)
			if err := os.RemoveAll(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to remove old cache entry %s: %v\n", path, err)
			}
		}
	}
}
