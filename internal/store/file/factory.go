package file

import (
	"github.com/cliptray/cliptray/internal/normalize"
	"github.com/cliptray/cliptray/internal/store"
)

// NewFileStores creates all stores backed by JSON documents in the data directory.
func NewFileStores(cfg store.StoreConfig) (*store.Stores, error) {
	policy := normalize.ExportPolicy{
		DataRoot:       cfg.DataRoot,
		DataDir:        cfg.DataDir,
		ScreenshotsDir: cfg.ScreenshotsDir,
		ExportBase:     cfg.ExportBase,
	}

	return &store.Stores{
		Sections: NewFileSectionStore(cfg.TabsPath, cfg.LegacySectionsPath, policy),
		Clips:    NewFileClipStore(cfg.ClipsPath),
		Settings: NewFileSettingsStore(cfg.SettingsPath),
	}, nil
}
