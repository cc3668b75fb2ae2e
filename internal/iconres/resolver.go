// Package iconres maps a language identifier to an icon through an ordered,
// deterministic search over file naming conventions and search directories.
package iconres

import (
	"log/slog"
	"os"
	"path/filepath"

	"langtray/internal/langid"
	"langtray/internal/locale"
)

// DefaultName is the last file candidate before the builtin icon.
const DefaultName = "default.ico"

// Loader turns a file into an icon and supplies the builtin fallback.
type Loader interface {
	// Load returns an error when the file cannot be used as an icon.
	Load(path string) (*Icon, error)
	// Fallback never fails.
	Fallback() *Icon
}

// Resolver searches directories for the best icon for a language.
// It keeps no state between calls.
type Resolver struct {
	dirs    []string
	loader  Loader
	locales locale.Lookup
}

// test seam
var statFn = os.Stat

// NewResolver builds a resolver over dirs in priority order.
// locales may be nil, which disables the ISO-code candidates.
func NewResolver(dirs []string, loader Loader, locales locale.Lookup) *Resolver {
	return &Resolver{
		dirs:    append([]string(nil), dirs...),
		loader:  loader,
		locales: locales,
	}
}

// Dirs returns the search directories in priority order.
func (r *Resolver) Dirs() []string {
	return append([]string(nil), r.dirs...)
}

// Candidates returns the file names tried for id, highest priority first.
func (r *Resolver) Candidates(id langid.ID) []string {
	var info locale.Info
	if r.locales != nil && !id.IsUnknown() {
		info = r.locales.Lookup(id)
	}
	return candidateNames(id, info.Language, info.Region)
}

func candidateNames(id langid.ID, lang, region string) []string {
	names := make([]string, 0, 7)
	seen := make(map[string]struct{}, 7)
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if !id.IsUnknown() {
		add(id.Decimal() + ".ico")
		add(id.Decimal() + "_D.ico")
		if lang != "" && region != "" {
			add(lang + "-" + region + ".ico")
			add(lang + "_" + region + ".ico")
		}
		if lang != "" {
			add(lang + ".ico")
		}
		add(id.Hex4() + ".ico")
	}
	add(DefaultName)
	return names
}

// Resolve returns the icon for id. It never returns nil: when no file loads
// the builtin fallback icon is returned.
func (r *Resolver) Resolve(id langid.ID) *Icon {
	for _, name := range r.Candidates(id) {
		for _, dir := range r.dirs {
			path := filepath.Join(dir, name)
			info, err := statFn(path)
			if err != nil || info.IsDir() {
				continue
			}
			icon, err := r.loader.Load(path)
			if err != nil {
				slog.Warn("[iconres] icon file rejected", "path", path, "error", err)
				continue
			}
			if icon == nil {
				continue
			}
			slog.Debug("[iconres] resolved", "lang", id.String(), "path", path)
			return icon
		}
	}
	slog.Debug("[iconres] no icon file found, using builtin", "lang", id.String())
	return r.Fallback()
}

// Fallback returns the builtin icon.
func (r *Resolver) Fallback() *Icon {
	if icon := r.loader.Fallback(); icon != nil {
		return icon
	}
	return NewBuiltinIcon(0)
}
