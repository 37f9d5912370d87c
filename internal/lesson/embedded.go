package lesson

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed sections
var sectionsFS embed.FS

// loadSection reads one embedded markdown file by name.
func loadSection(name string) (string, error) {
	data, err := sectionsFS.ReadFile(path.Join("sections", name))
	if err != nil {
		return "", fmt.Errorf("load section %s: %w", name, err)
	}
	return string(data), nil
}

// Sections returns every embedded section keyed by filename, mostly for
// export and tests.
func Sections() (map[string]string, error) {
	sections := make(map[string]string)
	err := fs.WalkDir(sectionsFS, "sections", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".md") {
			return nil
		}
		data, err := sectionsFS.ReadFile(p)
		if err != nil {
			return err
		}
		sections[path.Base(p)] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk sections: %w", err)
	}
	return sections, nil
}
