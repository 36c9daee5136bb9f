// Package taxid validates Indian GST identification numbers.
package taxid

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidGSTIN = errors.New("invalid_gstin")

	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)
)

const gstinAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NormalizeGSTIN trims and upper-cases a raw GSTIN.
func NormalizeGSTIN(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// ValidateGSTIN checks the GSTIN format and its mod-36 check digit.
// An empty value is accepted; unregistered counterparties have no GSTIN.
func ValidateGSTIN(value string) error {
	gstin := NormalizeGSTIN(value)
	if gstin == "" {
		return nil
	}
	if !gstinPattern.MatchString(gstin) {
		return ErrInvalidGSTIN
	}
	if checkCharacter(gstin[:14]) != rune(gstin[14]) {
		return ErrInvalidGSTIN
	}
	return nil
}

// checkCharacter computes the mod-36 check character over the first 14
// characters, alternating weights 1 and 2.
func checkCharacter(payload string) rune {
	sum := 0
	factor := 1
	for _, c := range payload {
		value := strings.IndexRune(gstinAlphabet, c)
		if value < 0 {
			return 0
		}
		product := value * factor
		sum += product/36 + product%36
		if factor == 1 {
			factor = 2
		} else {
			factor = 1
		}
	}
	return rune(gstinAlphabet[(36-sum%36)%36])
}
