package model

import (
	"time"

	"github.com/google/uuid"
)

// PrinterProfile is a named, reusable calibration configuration.
type PrinterProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Config    Config `json:"config"`
}

// NewPrinterProfile creates a profile with a generated ID.
func NewPrinterProfile(name string, cfg Config) PrinterProfile {
	now := time.Now().UTC().Format(time.RFC3339)
	return PrinterProfile{
		ID:        uuid.New().String()[:8],
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Config:    cfg,
	}
}

// ProfileStore holds the user's saved printer profiles.
type ProfileStore struct {
	Profiles []PrinterProfile `json:"profiles"`
}

// NewProfileStore creates an empty profile store.
func NewProfileStore() ProfileStore {
	return ProfileStore{
		Profiles: []PrinterProfile{},
	}
}

// DefaultProfileStore returns a store with one profile per firmware dialect,
// all based on DefaultConfig.
func DefaultProfileStore() ProfileStore {
	ps := NewProfileStore()
	for _, fw := range Firmwares {
		cfg := DefaultConfig()
		cfg.Firmware = fw
		ps.Add(NewPrinterProfile(string(fw), cfg))
	}
	return ps
}

// Add adds a profile to the store.
func (ps *ProfileStore) Add(p PrinterProfile) {
	ps.Profiles = append(ps.Profiles, p)
}

// Upsert replaces the profile with the same name, or adds it.
func (ps *ProfileStore) Upsert(name string, cfg Config) PrinterProfile {
	if existing := ps.FindByName(name); existing != nil {
		existing.Config = cfg
		existing.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		return *existing
	}
	p := NewPrinterProfile(name, cfg)
	ps.Add(p)
	return p
}

// Remove removes a profile by ID. Returns true if found and removed.
func (ps *ProfileStore) Remove(id string) bool {
	for i, p := range ps.Profiles {
		if p.ID == id {
			ps.Profiles = append(ps.Profiles[:i], ps.Profiles[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the profile with the given ID, or nil.
func (ps *ProfileStore) FindByID(id string) *PrinterProfile {
	for i := range ps.Profiles {
		if ps.Profiles[i].ID == id {
			return &ps.Profiles[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first profile with the given name, or nil.
func (ps *ProfileStore) FindByName(name string) *PrinterProfile {
	for i := range ps.Profiles {
		if ps.Profiles[i].Name == name {
			return &ps.Profiles[i]
		}
	}
	return nil
}

// Names returns the profile names in store order.
func (ps *ProfileStore) Names() []string {
	names := make([]string, len(ps.Profiles))
	for i, p := range ps.Profiles {
		names[i] = p.Name
	}
	return names
}
