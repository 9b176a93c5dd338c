package auth

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword generates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plaintext password with a stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

//go:embed common_passwords.txt
var commonPasswordList string

var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(commonPasswordList, "\n") {
		if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
			set[strings.ToLower(line)] = struct{}{}
		}
	}
	return set
}()

// MaxSimilarity is the similarity ratio at or above which a password is
// considered too close to one of the user's attributes.
const MaxSimilarity = 0.7

// PasswordPolicy checks new passwords against length, composition,
// similarity to the user's own attributes and a list of common passwords.
type PasswordPolicy struct {
	MinLength int
}

// Check returns a human readable reason for every rule the password breaks.
// attributes are values such as the email and full name.
func (p PasswordPolicy) Check(password string, attributes ...string) []string {
	var problems []string
	if len([]rune(password)) < p.MinLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}
	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	if tooSimilar(password, attributes) {
		problems = append(problems, "The password is too similar to your personal information.")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, "This password is too common.")
	}
	return problems
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func tooSimilar(password string, attributes []string) bool {
	pw := strings.ToLower(password)
	for _, attr := range attributes {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if attr == "" {
			continue
		}
		parts := append([]string{attr}, strings.FieldsFunc(attr, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})...)
		for _, part := range parts {
			if len(part) < 3 {
				continue
			}
			if similarity(pw, part) >= MaxSimilarity {
				return true
			}
		}
	}
	return false
}

// similarity is 2*LCS/(len(a)+len(b)) over runes, in [0, 1].
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return 2 * float64(prev[len(rb)]) / float64(len(ra)+len(rb))
}
