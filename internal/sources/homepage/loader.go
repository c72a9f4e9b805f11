package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/newtab/internal/domain"
)

// templateVarRegexp matches Homepage template variables ({{HOMEPAGE_VAR_...}}).
var templateVarRegexp = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Source is a file that yields shortcuts to import.
type Source interface {
	Name() string
	Path() string
	Shortcuts() ([]domain.Shortcut, error)
}

// ServicesFile reads a Homepage services.yaml.
type ServicesFile struct {
	path string
}

func NewServicesFile(path string) *ServicesFile { return &ServicesFile{path: path} }

func (f *ServicesFile) Name() string { return "homepage-services" }
func (f *ServicesFile) Path() string { return f.path }

// Load parses the file without mapping it.
func (f *ServicesFile) Load() (ServicesConfig, error) {
	var cfg ServicesConfig
	if err := readYAML(f.path, &cfg); err != nil {
		return nil, fmt.Errorf("services file: %w", err)
	}
	return cfg, nil
}

// Shortcuts loads and maps the file.
func (f *ServicesFile) Shortcuts() ([]domain.Shortcut, error) {
	cfg, err := f.Load()
	if err != nil {
		return nil, err
	}
	return MapServices(cfg)
}

// BookmarksFile reads a Homepage bookmarks.yaml.
type BookmarksFile struct {
	path string
}

func NewBookmarksFile(path string) *BookmarksFile { return &BookmarksFile{path: path} }

func (f *BookmarksFile) Name() string { return "homepage-bookmarks" }
func (f *BookmarksFile) Path() string { return f.path }

func (f *BookmarksFile) Load() (BookmarksConfig, error) {
	var cfg BookmarksConfig
	if err := readYAML(f.path, &cfg); err != nil {
		return nil, fmt.Errorf("bookmarks file: %w", err)
	}
	return cfg, nil
}

func (f *BookmarksFile) Shortcuts() ([]domain.Shortcut, error) {
	cfg, err := f.Load()
	if err != nil {
		return nil, err
	}
	return MapBookmarks(cfg)
}

// readYAML reads path, blanks template variables and decodes into out.
func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	data = stripTemplateVariables(data)

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// stripTemplateVariables replaces template variables with an empty string.
// Example: {{HOMEPAGE_VAR_ADGUARD_USER}} -> ""
func stripTemplateVariables(data []byte) []byte {
	return templateVarRegexp.ReplaceAll(data, []byte(`""`))
}
