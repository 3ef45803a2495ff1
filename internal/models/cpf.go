package models

import "regexp"

var (
	cpfFormatted = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)
	cpfDigits    = regexp.MustCompile(`^\d{11}$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// NormalizeCPF validates the shape of a Brazilian CPF, accepting either the
// formatted XXX.XXX.XXX-XX form or 11 raw digits, and returns the bare digits.
func NormalizeCPF(cpf string) (string, bool) {
	if !cpfFormatted.MatchString(cpf) && !cpfDigits.MatchString(cpf) {
		return "", false
	}
	return nonDigits.ReplaceAllString(cpf, ""), true
}
