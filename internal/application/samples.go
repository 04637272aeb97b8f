package application

import (
	"embed"
	"fmt"
	"io/fs"
)

// Sample file names under the samples directory.
const (
	SampleCatalogFile = "catalog.yaml"
	SampleRosterFile  = "roster.yaml"
	SampleRacesFile   = "races.yaml"
)

//go:embed samples/*.yaml
var samples embed.FS

// SampleFiles returns the bundled 2026 catalog, roster and calendar keyed
// by file name.
func SampleFiles() (map[string][]byte, error) {
	out := make(map[string][]byte, 3)
	for _, name := range []string{SampleCatalogFile, SampleRosterFile, SampleRacesFile} {
		data, err := fs.ReadFile(samples, "samples/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sample %s: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}
