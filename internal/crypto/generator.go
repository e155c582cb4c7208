package crypto

import (
	"crypto/rand"
	"math/big"
)

const (
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	numberChars    = "0123456789"
	symbolChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	// MinLength and MaxLength bound the length control exposed to users.
	// Generate itself accepts any length.
	MinLength     = 4
	MaxLength     = 32
	DefaultLength = 14
)

// Options selects the character classes a password draws from.
type Options struct {
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Numbers   bool `json:"numbers"`
	Symbols   bool `json:"symbols"`
}

// DefaultOptions returns all character classes enabled.
func DefaultOptions() Options {
	return Options{
		Uppercase: true,
		Lowercase: true,
		Numbers:   true,
		Symbols:   true,
	}
}

// Enabled reports how many classes are switched on.
func (o Options) Enabled() int {
	n := 0
	for _, on := range []bool{o.Uppercase, o.Lowercase, o.Numbers, o.Symbols} {
		if on {
			n++
		}
	}
	return n
}

// classes returns the alphabets of the enabled classes in fixed order
// (uppercase, lowercase, numbers, symbols). With nothing enabled it falls
// back to lowercase.
func (o Options) classes() []string {
	var sets []string
	if o.Uppercase {
		sets = append(sets, uppercaseChars)
	}
	if o.Lowercase {
		sets = append(sets, lowercaseChars)
	}
	if o.Numbers {
		sets = append(sets, numberChars)
	}
	if o.Symbols {
		sets = append(sets, symbolChars)
	}
	if len(sets) == 0 {
		sets = append(sets, lowercaseChars)
	}
	return sets
}

// Alphabet returns the working alphabet for the options: the union of the
// enabled classes, or lowercase when none are enabled.
func (o Options) Alphabet() string {
	var pool string
	for _, set := range o.classes() {
		pool += set
	}
	return pool
}

// Generate creates a random password of the given length.
//
// One character from every enabled class is placed first, the remainder is
// filled from the full alphabet, and the result is shuffled. When length is
// smaller than the number of enabled classes the shuffled buffer is cut down
// to length, so the output is always exactly max(length, 0) characters.
// The buffer is allocated up front, so length is bounded in practice by
// available memory; callers keep it within MinLength..MaxLength.
func Generate(length int, opts Options) string {
	if length < 0 {
		length = 0
	}

	sets := opts.classes()
	pool := opts.Alphabet()

	size := max(length, len(sets))
	result := make([]byte, 0, size)

	// Guarantee at least one character from each selected type.
	for _, charset := range sets {
		result = append(result, randChar(charset))
	}

	for len(result) < length {
		result = append(result, randChar(pool))
	}

	secureShuffle(result)

	return string(result[:length])
}

// randChar picks a random character from charset using crypto/rand.
func randChar(charset string) byte {
	return charset[randIndex(len(charset))]
}

// secureShuffle performs a Fisher-Yates shuffle using crypto/rand.
func secureShuffle(data []byte) {
	for i := len(data) - 1; i > 0; i-- {
		j := randIndex(i + 1)
		data[i], data[j] = data[j], data[i]
	}
}

// randIndex returns a uniform index in [0, n).
// crypto/rand.Reader does not return errors as of Go 1.24; a failure here
// means the platform has no entropy source at all.
func randIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto: reading random index: " + err.Error())
	}
	return int(v.Int64())
}
