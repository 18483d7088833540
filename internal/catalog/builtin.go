package catalog

import (
	"bytes"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Builtin returns a registry holding the sample cards shipped with the
// module.
func Builtin(logger *zap.Logger) (*Registry, error) {
	defs, err := Decode(bytes.NewReader(builtinYAML))
	if err != nil {
		return nil, fmt.Errorf("builtin catalogue: %w", err)
	}
	r := NewRegistry(logger)
	if err := r.Register(defs...); err != nil {
		return nil, fmt.Errorf("builtin catalogue: %w", err)
	}
	return r, nil
}
