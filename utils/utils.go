package utils

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mitchellh/hashstructure"
	"github.com/oklog/ulid"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var (
	ulidMutex   = sync.Mutex{}
	ulidEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}

	return b
}

// ArrayContains returns the index of the first element matching
func ArrayContains[T any](set []T, match func(elem T) bool) (int, bool) {
	for idx, elem := range set {
		if match(elem) {
			return idx, true
		}
	}

	return -1, false
}

// ULID returns a lexicographically sortable unique id
func ULID() string {
	ulidMutex.Lock()
	defer ulidMutex.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}

// TimestampedFileName returns a unique file name sortable by creation time
func TimestampedFileName(extension string) string {
	return fmt.Sprintf("%s.%s", strings.ToLower(ULID()), extension)
}

// UnmarshalFile reads a json or yaml file into dest; with decrypt the content is first
// decrypted with the configured encryption key
func UnmarshalFile(file string, dest any, decrypt bool) error {
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("file not found : %s", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("could not open file: %s", err)
	}

	if decrypt {
		data, err = DecryptConfig(context.Background(), data)
		if err != nil {
			return err
		}
	}

	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return fmt.Errorf("failed to convert yaml file[%s]: %s", file, err)
		}
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal file[%s]: %s", file, err)
	}

	return nil
}

// Unmarshal converts one structure into another through json
func Unmarshal(from, object any) error {
	reformatted, err := json.Marshal(from)
	if err != nil {
		return err
	}

	return json.Unmarshal(reformatted, object)
}

func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	for _, s := range available {
		if sub == s.CalledAs() || sub == s.Name() || ArrayContainsString(s.Aliases, sub) {
			return true
		}
	}
	return false
}

func ArrayContainsString(set []string, value string) bool {
	_, found := ArrayContains(set, func(elem string) bool { return elem == value })
	return found
}

// GetKeysHash hashes the values of the given keys, or of the whole record when no key is given
func GetKeysHash(m map[string]any, keys ...string) string {
	if len(keys) == 0 {
		keys = make([]string, 0, len(m))
		for key := range m {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	}

	values := make([]any, 0, len(keys))
	for _, key := range keys {
		values = append(values, fmt.Sprintf("%s=%v", key, m[key]))
	}

	hash, err := hashstructure.Hash(values, nil)
	if err != nil {
		// values are plain strings, hashing them cannot fail in practice
		return ULID()
	}
	return fmt.Sprintf("%x", hash)
}
