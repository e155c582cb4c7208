package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/oneminute/oneminute-go/internal/crypto"
	"github.com/oneminute/oneminute-go/internal/service"
)

// defaultsFile is the on-disk shape of the generator defaults file.
// Comments and trailing commas are allowed (HuJSON).
//
//	{
//		// characters per password
//		"length": 20,
//		"symbols": false,
//	}
type defaultsFile struct {
	Length    int   `json:"length"`
	Uppercase *bool `json:"uppercase"`
	Lowercase *bool `json:"lowercase"`
	Numbers   *bool `json:"numbers"`
	Symbols   *bool `json:"symbols"`
}

// LoadDefaults reads generator defaults from path. An empty path yields the
// built-in defaults.
func LoadDefaults(path string) (service.Defaults, error) {
	if path == "" {
		return service.BuiltinDefaults(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return service.Defaults{}, fmt.Errorf("failed to read defaults file: %w", err)
	}
	return ParseDefaults(raw)
}

// ParseDefaults parses generator defaults from JSON or HuJSON data.
// Keys that are left out keep their built-in value.
func ParseDefaults(raw []byte) (service.Defaults, error) {
	ast, err := hujson.Parse(raw)
	if err != nil {
		return service.Defaults{}, fmt.Errorf("failed to parse defaults file: %w", err)
	}
	ast.Standardize()

	var file defaultsFile
	if err := json.Unmarshal(ast.Pack(), &file); err != nil {
		return service.Defaults{}, fmt.Errorf("failed to unmarshal defaults file: %w", err)
	}

	d := service.BuiltinDefaults()
	if file.Length != 0 {
		if file.Length < crypto.MinLength || file.Length > crypto.MaxLength {
			return service.Defaults{}, fmt.Errorf("default length %d outside %d..%d", file.Length, crypto.MinLength, crypto.MaxLength)
		}
		d.Length = file.Length
	}
	setIf(&d.Options.Uppercase, file.Uppercase)
	setIf(&d.Options.Lowercase, file.Lowercase)
	setIf(&d.Options.Numbers, file.Numbers)
	setIf(&d.Options.Symbols, file.Symbols)

	return d, nil
}

func setIf(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
