package iconres

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"langtray/internal/langid"
	"langtray/internal/locale"
	"langtray/internal/testutil"
)

// fakeLoader accepts any file whose content does not start with "corrupt".
type fakeLoader struct {
	loads    []string
	released []string
}

func (f *fakeLoader) Load(path string) (*Icon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f.loads = append(f.loads, path)
	if strings.HasPrefix(string(data), "corrupt") {
		return nil, errors.New("not an icon")
	}
	return NewIcon(uintptr(len(f.loads)), path, func() { f.released = append(f.released, path) }), nil
}

func (f *fakeLoader) Fallback() *Icon {
	return NewBuiltinIcon(0xB0)
}

func newTestResolver(t *testing.T) (*Resolver, *fakeLoader, string, string) {
	t.Helper()
	root := t.TempDir()
	primary := filepath.Join(root, "icons")
	secondary := filepath.Join(root, "flags")
	loader := &fakeLoader{}
	return NewResolver([]string{primary, secondary}, loader, locale.Builtin()), loader, primary, secondary
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		id   langid.ID
		info locale.Info
		want []string
	}{
		{
			name: "full locale",
			id:   1033,
			info: locale.Info{Language: "en", Region: "US"},
			want: []string{"1033.ico", "1033_D.ico", "en-US.ico", "en_US.ico", "en.ico", "0409.ico", "default.ico"},
		},
		{
			name: "language only",
			id:   1049,
			info: locale.Info{Language: "ru"},
			want: []string{"1049.ico", "1049_D.ico", "ru.ico", "0419.ico", "default.ico"},
		},
		{
			name: "region only",
			id:   1049,
			info: locale.Info{Region: "RU"},
			want: []string{"1049.ico", "1049_D.ico", "0419.ico", "default.ico"},
		},
		{
			name: "empty locale",
			id:   0x7FFF,
			want: []string{"32767.ico", "32767_D.ico", "7FFF.ico", "default.ico"},
		},
		{
			name: "unknown identifier",
			id:   langid.Unknown,
			want: []string{"default.ico"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.info
			r := NewResolver(nil, &fakeLoader{}, locale.LookupFunc(func(langid.ID) locale.Info { return info }))
			if got := r.Candidates(tt.id); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Candidates(%d) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestCandidatesNilLocales(t *testing.T) {
	r := NewResolver(nil, &fakeLoader{}, nil)
	want := []string{"1033.ico", "1033_D.ico", "0409.ico", "default.ico"}
	if got := r.Candidates(1033); !reflect.DeepEqual(got, want) {
		t.Fatalf("Candidates = %v, want %v", got, want)
	}
}

func TestResolvePrimaryBeatsSecondary(t *testing.T) {
	r, _, primary, secondary := newTestResolver(t)
	want := testutil.WriteFile(t, primary, "1033.ico", "icon")
	testutil.WriteFile(t, secondary, "1033.ico", "icon")

	icon := r.Resolve(1033)
	if icon.Path() != want {
		t.Fatalf("Resolve(1033) = %q, want %q", icon.Path(), want)
	}
}

func TestResolveLanguageCodeOnly(t *testing.T) {
	r, _, primary, _ := newTestResolver(t)
	want := testutil.WriteFile(t, primary, "ru.ico", "icon")

	if got := r.Resolve(1049).Path(); got != want {
		t.Fatalf("Resolve(1049) = %q, want %q", got, want)
	}
}

func TestResolveDefaultWhenLocaleEmpty(t *testing.T) {
	r, _, _, secondary := newTestResolver(t)
	want := testutil.WriteFile(t, secondary, "default.ico", "icon")

	if got := r.Resolve(0x7FFF).Path(); got != want {
		t.Fatalf("Resolve(0x7FFF) = %q, want %q", got, want)
	}
}

func TestResolveCandidateOutranksDirectory(t *testing.T) {
	r, _, primary, secondary := newTestResolver(t)
	testutil.WriteFile(t, primary, "en.ico", "icon")
	want := testutil.WriteFile(t, secondary, "1033.ico", "icon")

	if got := r.Resolve(1033).Path(); got != want {
		t.Fatalf("Resolve(1033) = %q, want %q", got, want)
	}
}

func TestResolveSkipsCorruptFiles(t *testing.T) {
	r, loader, primary, secondary := newTestResolver(t)
	testutil.WriteFile(t, primary, "1033.ico", "corrupt")
	testutil.WriteFile(t, secondary, "1033.ico", "corrupt")
	want := testutil.WriteFile(t, primary, "en-US.ico", "icon")

	if got := r.Resolve(1033).Path(); got != want {
		t.Fatalf("Resolve(1033) = %q, want %q", got, want)
	}
	if len(loader.loads) != 3 {
		t.Fatalf("loader calls = %v, want 3", loader.loads)
	}
}

func TestResolveSkipsDirectoriesNamedLikeIcons(t *testing.T) {
	r, _, primary, _ := newTestResolver(t)
	if err := os.MkdirAll(filepath.Join(primary, "1033.ico"), 0o755); err != nil {
		t.Fatal(err)
	}
	want := testutil.WriteFile(t, primary, "0409.ico", "icon")

	if got := r.Resolve(1033).Path(); got != want {
		t.Fatalf("Resolve(1033) = %q, want %q", got, want)
	}
}

func TestResolveBuiltinFallback(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, primary, secondary string)
	}{
		{name: "missing directories", setup: func(*testing.T, string, string) {}},
		{name: "empty directories", setup: func(t *testing.T, primary, secondary string) {
			if err := os.MkdirAll(primary, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.MkdirAll(secondary, 0o755); err != nil {
				t.Fatal(err)
			}
		}},
		{name: "only corrupt default", setup: func(t *testing.T, primary, _ string) {
			testutil.WriteFile(t, primary, "default.ico", "corrupt")
		}},
		{name: "unrelated files", setup: func(t *testing.T, primary, _ string) {
			testutil.WriteFile(t, primary, "1031.ico", "icon")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, primary, secondary := newTestResolver(t)
			tt.setup(t, primary, secondary)
			icon := r.Resolve(1033)
			if icon == nil || !icon.Builtin() {
				t.Fatalf("Resolve(1033) = %+v, want builtin", icon)
			}
			if icon.Handle() != 0xB0 {
				t.Fatalf("Handle() = %#x, want 0xB0", icon.Handle())
			}
		})
	}
}

func TestResolveUnknownIdentifierUsesDefault(t *testing.T) {
	r, _, primary, _ := newTestResolver(t)
	testutil.WriteFile(t, primary, "1033.ico", "icon")
	want := testutil.WriteFile(t, primary, "default.ico", "icon")

	if got := r.Resolve(langid.Unknown).Path(); got != want {
		t.Fatalf("Resolve(unknown) = %q, want %q", got, want)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r, _, primary, secondary := newTestResolver(t)
	testutil.WriteFile(t, primary, "ru.ico", "icon")
	testutil.WriteFile(t, secondary, "ru-RU.ico", "icon")
	testutil.WriteFile(t, secondary, "default.ico", "icon")

	first := r.Resolve(1049).Path()
	for i := 0; i < 5; i++ {
		if got := r.Resolve(1049).Path(); got != first {
			t.Fatalf("iteration %d: Resolve(1049) = %q, want %q", i, got, first)
		}
	}
	if want := filepath.Join(secondary, "ru-RU.ico"); first != want {
		t.Fatalf("Resolve(1049) = %q, want %q", first, want)
	}
}

func TestResolverFallbackWhenLoaderReturnsNil(t *testing.T) {
	r := NewResolver(nil, nilFallbackLoader{}, nil)
	if icon := r.Fallback(); icon == nil || !icon.Builtin() {
		t.Fatalf("Fallback() = %+v, want builtin", icon)
	}
}

type nilFallbackLoader struct{}

func (nilFallbackLoader) Load(string) (*Icon, error) { return nil, errors.New("unused") }
func (nilFallbackLoader) Fallback() *Icon           { return nil }

func TestIconReleaseOnce(t *testing.T) {
	calls := 0
	icon := NewIcon(7, "x.ico", func() { calls++ })
	icon.Release()
	icon.Release()
	if calls != 1 {
		t.Fatalf("release calls = %d, want 1", calls)
	}

	var nilIcon *Icon
	nilIcon.Release()
	if nilIcon.Handle() != 0 || nilIcon.Path() != "" || nilIcon.Builtin() || nilIcon.Source() != "none" {
		t.Fatal("nil icon accessors returned non-zero values")
	}

	builtin := NewBuiltinIcon(3)
	builtin.Release()
	if builtin.Source() != "builtin" || icon.Source() != "x.ico" {
		t.Fatalf("Source() = %q / %q", builtin.Source(), icon.Source())
	}
}

func TestFileLoaderRejectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	loader := &FileLoader{}

	if _, err := loader.Load(filepath.Join(dir, "missing.ico")); err == nil {
		t.Fatal("Load(missing) error = nil")
	}
	garbage := testutil.WriteFile(t, dir, "garbage.ico", "definitely not an icon")
	if _, err := loader.Load(garbage); err == nil {
		t.Fatal("Load(garbage) error = nil")
	}
	empty := testutil.WriteFile(t, dir, "empty.ico", "")
	if _, err := loader.Load(empty); err == nil {
		t.Fatal("Load(empty) error = nil")
	}
	if icon := loader.Fallback(); !icon.Builtin() {
		t.Fatal("Fallback() is not builtin")
	}
}
