package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/discochess/contagion/internal/store"
	"github.com/discochess/contagion/internal/store/memstore"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin returns a store holding the scenarios shipped with the binary.
func Builtin() (*memstore.Store, error) {
	files, err := fs.Glob(builtinFS, "builtin/*.yaml")
	if err != nil {
		return nil, err
	}

	st := memstore.New()
	for _, file := range files {
		name, ok := store.NameFromFile(path.Base(file), "")
		if !ok {
			return nil, fmt.Errorf("builtin scenario %s: %w", file, store.ErrInvalidName)
		}
		data, err := builtinFS.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if err := st.SetScenario(name, data); err != nil {
			return nil, err
		}
	}
	return st, nil
}
