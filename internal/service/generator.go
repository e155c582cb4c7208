package service

import (
	"errors"
	"fmt"

	"github.com/oneminute/oneminute-go/internal/crypto"
	"github.com/oneminute/oneminute-go/internal/metrics"
	"github.com/oneminute/oneminute-go/internal/model"
)

var ErrLengthOutOfRange = fmt.Errorf("password length must be between %d and %d", crypto.MinLength, crypto.MaxLength)

// GeneratorService handles stateless password generation business logic.
type GeneratorService struct {
	defaults Defaults
}

// Defaults are the settings used for fields a request leaves out.
type Defaults struct {
	Length  int
	Options crypto.Options
}

// BuiltinDefaults returns 14 characters with every class enabled.
func BuiltinDefaults() Defaults {
	return Defaults{Length: crypto.DefaultLength, Options: crypto.DefaultOptions()}
}

// NewGeneratorService creates a new GeneratorService.
func NewGeneratorService(defaults Defaults) *GeneratorService {
	return &GeneratorService{defaults: defaults}
}

// Generate produces a password and its strength for the given request.
func (s *GeneratorService) Generate(req model.GenerateRequest) (model.GenerateResponse, error) {
	length, opts, err := s.resolve(req)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	password := crypto.Generate(length, opts)
	strength := crypto.ScoreStrength(length, opts)
	metrics.ObserveGenerated("api", strength)

	return model.GenerateResponse{
		Password: password,
		Length:   len(password),
		Strength: strength,
	}, nil
}

// Strength rates the settings in the request without generating a password.
func (s *GeneratorService) Strength(req model.GenerateRequest) (crypto.Strength, error) {
	length, opts, err := s.resolve(req)
	if err != nil {
		return crypto.Strength{}, err
	}
	return crypto.ScoreStrength(length, opts), nil
}

func (s *GeneratorService) resolve(req model.GenerateRequest) (int, crypto.Options, error) {
	length := req.Length
	if length == 0 {
		length = s.defaults.Length
	}
	if err := validateLength(length); err != nil {
		return 0, crypto.Options{}, err
	}

	opts := crypto.Options{
		Uppercase: boolOrDefault(req.Uppercase, s.defaults.Options.Uppercase),
		Lowercase: boolOrDefault(req.Lowercase, s.defaults.Options.Lowercase),
		Numbers:   boolOrDefault(req.Numbers, s.defaults.Options.Numbers),
		Symbols:   boolOrDefault(req.Symbols, s.defaults.Options.Symbols),
	}
	return length, opts, nil
}

func validateLength(n int) error {
	if n < crypto.MinLength || n > crypto.MaxLength {
		return ErrLengthOutOfRange
	}
	return nil
}

// IsValidationError reports whether err was caused by bad input rather than a failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrLengthOutOfRange) || errors.Is(err, ErrUnknownOption)
}

// boolOrDefault returns the dereferenced pointer value, or the fallback if nil.
func boolOrDefault(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
