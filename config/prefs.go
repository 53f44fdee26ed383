package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/bassamadnan/lumimail/mailbox"
)

// Preferences holds user choices that outlive a session.
type Preferences struct {
	LastSection mailbox.Section `json:"lastSection"`
}

// Manager handles loading, saving, and accessing preferences.
type Manager struct {
	filePath string
	prefs    *Preferences
	mu       sync.RWMutex
}

// NewManager creates a new preferences manager.
func NewManager(filePath string) (*Manager, error) {
	m := &Manager{
		filePath: filePath,
		prefs:    &Preferences{LastSection: mailbox.Inbox},
	}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads preferences from the JSON file. A missing file leaves the
// defaults in place; the file is created on the first save.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	prefs := Preferences{LastSection: mailbox.Inbox}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return err
	}
	if !prefs.LastSection.Valid() {
		prefs.LastSection = mailbox.Inbox
	}
	m.prefs = &prefs
	return nil
}

// save writes the current preferences. Callers hold m.mu.
func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.prefs, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(m.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(m.filePath, data, 0644)
}

// Get returns a copy of the current preferences.
func (m *Manager) Get() Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.prefs
}

// LastSection is the section the user had open when they last quit.
func (m *Manager) LastSection() mailbox.Section {
	return m.Get().LastSection
}

// SetLastSection records section and saves.
func (m *Manager) SetLastSection(section mailbox.Section) error {
	if !section.Valid() {
		return mailbox.ErrUnknownSection
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prefs.LastSection == section {
		return nil
	}
	m.prefs.LastSection = section
	return m.save()
}
