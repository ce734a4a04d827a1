package credentials

import (
	"encoding/json"
	"os"
	"sync"
)

type fsSession struct {
	Tokens map[string]string `json:"tokens"`
}

// FileStore persists slots to a JSON session file. Read and parse failures
// degrade to misses; write failures are silently dropped per the store
// contract (the next login recreates the file).
type FileStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (f *FileStore) Get(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := f.read()
	v, ok := session.Tokens[name]
	if v == "" {
		return "", false
	}
	return v, ok
}

func (f *FileStore) Set(name, value string, _ Options) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := f.read()
	session.Tokens[name] = value
	f.write(session)
}

func (f *FileStore) Clear(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := f.read()
	delete(session.Tokens, name)
	f.write(session)
}

func (f *FileStore) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := f.read()
	for _, name := range KnownSlots {
		delete(session.Tokens, name)
	}
	f.write(session)
}

func (f *FileStore) read() fsSession {
	session := fsSession{Tokens: make(map[string]string)}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return session
	}
	if err := json.Unmarshal(b, &session); err != nil || session.Tokens == nil {
		session.Tokens = make(map[string]string)
	}
	return session
}

func (f *FileStore) write(session fsSession) {
	if err := EnsureParentDir(f.Path); err != nil {
		return
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(f.Path, data, 0600)
}
