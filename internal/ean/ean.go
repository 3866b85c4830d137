// Package ean implements the EAN-13 checksum utility the behavioral spec
// treats as an external pure function: computing and validating the 13th
// (check) digit over the first 12 digits of a barcode.
package ean

import "fmt"

const Length = 13

// Checksum computes the EAN-13 check digit for a 12-digit code.
func Checksum(first12 string) (byte, error) {
	if len(first12) != Length-1 {
		return 0, fmt.Errorf("ean: expected %d digits, got %d", Length-1, len(first12))
	}
	sum := 0
	for i, r := range first12 {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("ean: non-digit rune %q at position %d", r, i)
		}
		d := int(r - '0')
		// 1-indexed position: odd positions weigh 1, even positions weigh 3.
		if (i+1)%2 == 0 {
			d *= 3
		}
		sum += d
	}
	check := (10 - (sum % 10)) % 10
	return byte('0' + check), nil
}

// Encode appends the check digit to a 12-digit code, returning a full
// 13-digit EAN-13 string.
func Encode(first12 string) (string, error) {
	c, err := Checksum(first12)
	if err != nil {
		return "", err
	}
	return first12 + string(c), nil
}

// Validate reports whether code is a well-formed, checksum-valid EAN-13.
func Validate(code string) bool {
	if len(code) != Length {
		return false
	}
	want, err := Checksum(code[:Length-1])
	if err != nil {
		return false
	}
	return code[Length-1] == want
}
