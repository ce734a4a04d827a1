package credentials

import (
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const keychainService = "tenderctl"

// KeychainStore keeps slots in the macOS keychain as generic passwords
// under one service, one account per slot. Lookup misses and command
// failures degrade to absent values per the store contract.
type KeychainStore struct {
	mu     sync.Mutex
	logger *zerolog.Logger
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{}
}

func NewKeychainStoreWithLogger(logger zerolog.Logger) *KeychainStore {
	return &KeychainStore{logger: &logger}
}

func (k *KeychainStore) Get(name string) (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	out, err := exec.Command("security", "find-generic-password",
		"-s", keychainService, "-a", name, "-w").Output()
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(string(out))
	if value == "" {
		return "", false
	}
	return value, true
}

func (k *KeychainStore) Set(name, value string, _ Options) {
	k.mu.Lock()
	defer k.mu.Unlock()

	// -U updates in place when the item already exists.
	err := exec.Command("security", "add-generic-password",
		"-U", "-s", keychainService, "-a", name, "-w", value).Run()
	if err != nil && k.logger != nil {
		k.logger.Warn().Err(err).Str("slot", name).Msg("keychain write failed")
	}
}

func (k *KeychainStore) Clear(name string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.delete(name)
}

func (k *KeychainStore) ClearAll() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, name := range KnownSlots {
		k.delete(name)
	}
}

func (k *KeychainStore) delete(name string) {
	// delete-generic-password fails when the item is absent; that is fine.
	_ = exec.Command("security", "delete-generic-password",
		"-s", keychainService, "-a", name).Run()
}
