// Package extensions implements the installed-extension registry: a small
// persisted catalog of third-party capability packs the engine has been
// told to load, together with a lightweight audit pass over their declared
// permissions. There is no plugin loader here — extensions are declarative
// registry entries an external installer populates; this package only
// tracks and reports on them.
package extensions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"warden/internal/logging"
)

// Entry is one installed extension's registry record.
type Entry struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Source      string    `json:"source"`
	Permissions []string  `json:"permissions"`
	Installed   time.Time `json:"installed"`
}

// AuditFinding flags one entry with a permission the default policy
// considers sensitive enough to call out.
type AuditFinding struct {
	Name       string   `json:"name"`
	Concerning []string `json:"concerning_permissions"`
}

// sensitivePermissions lists the permissions Audit calls out. run_command
// and clipboard_write are also sensitive tool names in the Safety Engine;
// filesystem_write, network and window_control have no Safety Engine entry
// of the same name.
var sensitivePermissions = map[string]bool{
	"run_command": true, "clipboard_write": true, "filesystem_write": true,
	"network": true, "window_control": true,
}

// Registry is the installed-extension registry, persisted as one JSON file.
type Registry struct {
	mu   sync.Mutex
	path string
}

// Open opens (creating if necessary) the registry at dir/extensions/installed.json.
func Open(dir string) (*Registry, error) {
	path := filepath.Join(dir, "extensions", "installed.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create extensions directory: %w", err)
	}
	return &Registry{path: path}, nil
}

func (r *Registry) load() (map[string]Entry, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string]Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse extension registry: %w", err)
	}
	return entries, nil
}

func (r *Registry) save(entries map[string]Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

// List returns every installed extension.
func (r *Registry) List() ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	return out, nil
}

// Install registers an extension, overwriting any existing entry with the
// same name.
func (r *Registry) Install(name, version, source string, permissions []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, err := r.load()
	if err != nil {
		return err
	}
	entries[name] = Entry{Name: name, Version: version, Source: source, Permissions: permissions, Installed: time.Now()}
	if err := r.save(entries); err != nil {
		return err
	}
	logging.Get(logging.CategorySystem).Info("installed extension %q v%s", name, version)
	return nil
}

// Uninstall removes an extension by name.
func (r *Registry) Uninstall(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := entries[name]; !ok {
		return fmt.Errorf("no such extension: %s", name)
	}
	delete(entries, name)
	return r.save(entries)
}

// Audit reports every installed extension that declares a sensitive
// permission.
func (r *Registry) Audit() ([]AuditFinding, error) {
	entries, err := r.List()
	if err != nil {
		return nil, err
	}
	var findings []AuditFinding
	for _, e := range entries {
		var concerning []string
		for _, p := range e.Permissions {
			if sensitivePermissions[p] {
				concerning = append(concerning, p)
			}
		}
		if len(concerning) > 0 {
			findings = append(findings, AuditFinding{Name: e.Name, Concerning: concerning})
		}
	}
	return findings, nil
}
