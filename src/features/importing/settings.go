package importing

// SettingsStore persists the last watched folder. An empty string means none.
type SettingsStore interface {
	GetLastFolder() string
	SaveLastFolder(path string) error
}

// Trasher moves files to the platform trash instead of unlinking them.
type Trasher interface {
	Trash(path string) error
}
