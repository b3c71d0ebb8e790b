// Package settingsfile reads Settings from TOML files and keeps a Store in
// sync with a file as it is edited.
package settingsfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/kovidgoyal/gllcms"
	"github.com/pelletier/go-toml/v2"
)

// file mirrors the on-disk format. Missing keys keep their defaults.
type file struct {
	ICCProfile *string  `toml:"icc_profile,omitempty"`
	Brightness *float64 `toml:"brightness"`
	Contrast   *float64 `toml:"contrast"`
	Hue        *float64 `toml:"hue"`
	Saturation *float64 `toml:"saturation"`
}

// Decode parses TOML settings. Relative profile paths are resolved against
// base_dir.
func Decode(data []byte, base_dir string) (ans gllcms.Settings, err error) {
	var f file
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err = d.Decode(&f); err != nil {
		var se *toml.StrictMissingError
		if errors.As(err, &se) {
			return ans, fmt.Errorf("%w: %s", gllcms.ErrInvalidSettings, se.String())
		}
		return ans, fmt.Errorf("%w: %w", gllcms.ErrInvalidSettings, err)
	}
	ans = gllcms.DefaultSettings()
	if f.ICCProfile != nil && *f.ICCProfile != "" {
		ans.ICCProfilePath = *f.ICCProfile
		if !filepath.IsAbs(ans.ICCProfilePath) && base_dir != "" {
			ans.ICCProfilePath = filepath.Join(base_dir, ans.ICCProfilePath)
		}
	}
	for _, x := range []struct {
		src *float64
		dst *float64
	}{{f.Brightness, &ans.Brightness}, {f.Contrast, &ans.Contrast}, {f.Hue, &ans.Hue}, {f.Saturation, &ans.Saturation}} {
		if x.src != nil {
			*x.dst = *x.src
		}
	}
	return ans, ans.Validate()
}

// Load reads settings from the TOML file at path.
func Load(path string) (gllcms.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return gllcms.Settings{}, err
	}
	s, err := Decode(data, filepath.Dir(path))
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Encode serializes s in the format read by Decode.
func Encode(s gllcms.Settings) ([]byte, error) {
	f := file{Brightness: &s.Brightness, Contrast: &s.Contrast, Hue: &s.Hue, Saturation: &s.Saturation}
	if s.ICCProfilePath != "" {
		f.ICCProfile = &s.ICCProfilePath
	}
	return toml.Marshal(f)
}

// Apply loads path into store.
func Apply(path string, store *gllcms.Store) error {
	s, err := Load(path)
	if err != nil {
		return err
	}
	return store.Set(s)
}

// Watch applies path to store and then re-applies it every time the file
// changes, until ctx is done. The containing directory is watched so that
// editors which replace the file on save are handled. Errors while
// reloading are logged and leave the store unchanged.
func Watch(ctx context.Context, path string, store *gllcms.Store) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err = Apply(path, store); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err = watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	log := gllcms.Logger()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if err := Apply(path, store); err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					log.Warn("settingsfile: failed to reload settings", "path", path, "error", err)
				}
				continue
			}
			log.Debug("settingsfile: reloaded settings", "path", path, "settings", store.Snapshot())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("settingsfile: watch error", "path", path, "error", err)
		}
	}
}
