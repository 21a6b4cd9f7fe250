// Package template ships starter configuration files for common schema
// shapes. They are plain dataforge.yml files a user copies and edits.
package template

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed *.yml
var files embed.FS

// Names lists the available template names, without the .yml suffix.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		names = append(names, strings.TrimSuffix(entry.Name(), ".yml"))
	}
	sort.Strings(names)
	return names
}

// Read returns the raw content of one template.
func Read(name string) ([]byte, error) {
	data, err := files.ReadFile(name + ".yml")
	if err != nil {
		return nil, fmt.Errorf("unknown template %q, available: %s", name, strings.Join(Names(), ", "))
	}
	return data, nil
}
