// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// NormalizePage bounds a page request: page is at least 1, a non-positive
// size becomes defSize, and size never exceeds maxSize when maxSize > 0.
func NormalizePage(page, size, defSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return page, size
}

// Offset returns the number of rows preceding page (1-based).
func Offset(page, size int) int {
	if page < 1 || size < 1 {
		return 0
	}
	return (page - 1) * size
}

// TotalPages returns ceil(total/size), or 0 when size is not positive.
func TotalPages(total int64, size int) int {
	if size < 1 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
