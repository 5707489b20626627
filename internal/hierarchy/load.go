package hierarchy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"procurement/internal/apperr"
	"procurement/internal/model"
)

type directoryFile struct {
	Users []model.User `yaml:"users"`
}

// LoadFile reads a YAML user directory and validates it.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: user directory %s not found", apperr.ErrConfiguration, path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates a directory from raw YAML bytes.
func FromYAML(data []byte) (*Directory, error) {
	var f directoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: invalid directory yaml: %v", apperr.ErrConfiguration, err)
	}
	if len(f.Users) == 0 {
		return nil, fmt.Errorf("%w: user directory is empty", apperr.ErrConfiguration)
	}
	return New(f.Users)
}
