package validation

import "strings"

// IsValidISBN accepts ISBN-10 and ISBN-13 strings, with hyphens and spaces
// stripped before checking length and check digit.
func IsValidISBN(isbn string) bool {
	clean := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	switch len(clean) {
	case 10:
		return isValidISBN10(clean)
	case 13:
		return isValidISBN13(clean)
	default:
		return false
	}
}

// ISBN-10: digits weighted 10..2, check digit = (11 - sum mod 11) mod 11.
// An 'X' check digit is not accepted; the catalog only stores numeric ISBNs.
func isValidISBN10(isbn string) bool {
	sum := 0
	for i := 0; i < 9; i++ {
		d := int(isbn[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		sum += d * (10 - i)
	}
	check := int(isbn[9] - '0')
	if check < 0 || check > 9 {
		return false
	}
	return check == (11-sum%11)%11
}

// ISBN-13: digits weighted alternating 1,3, check digit = (10 - sum mod 10) mod 10.
func isValidISBN13(isbn string) bool {
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(isbn[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := int(isbn[12] - '0')
	if check < 0 || check > 9 {
		return false
	}
	return check == (10-sum%10)%10
}
