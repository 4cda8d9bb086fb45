package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver anchors relative asset paths (fonts, models, binaries shipped
// next to the executable) to one base directory chosen at startup.
type Resolver struct {
	Base string
}

// Resolve returns p unchanged when it is empty, absolute or a bare command
// name meant for PATH lookup; otherwise it joins p to Base. A leading ~/
// expands to the home directory.
func (r Resolver) Resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	if filepath.IsAbs(p) || r.Base == "" {
		return p
	}
	return filepath.Join(r.Base, p)
}

// ResolveBinary is Resolve for executables: a name without a path
// separator is left for PATH lookup.
func (r Resolver) ResolveBinary(p string) string {
	if !strings.ContainsRune(p, '/') && !strings.ContainsRune(p, filepath.Separator) {
		return strings.TrimSpace(p)
	}
	return r.Resolve(p)
}
