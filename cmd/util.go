package main

import (
	"strconv"
	"strings"
)

// miscellaneous utility functions

func sliceContainsString(haystack []string, needle string, insensitive bool) bool {
	if len(haystack) == 0 {
		return false
	}

	for _, item := range haystack {
		a := item
		b := needle

		if insensitive == true {
			a = strings.ToLower(item)
			b = strings.ToLower(needle)
		}

		if a == b {
			return true
		}
	}

	return false
}

func timeoutWithMinimum(str string, min int) int {
	val, err := strconv.Atoi(str)

	// fallback for invalid or nonsensical values
	if err != nil || val < min {
		val = min
	}

	return val
}

func nonemptyValues(val []string) []string {
	res := []string{}

	for _, s := range val {
		if s != "" {
			res = append(res, s)
		}
	}

	return res
}

func isValidSortDirection(s string) bool {
	switch s {
	case "asc":
	case "desc":
	default:
		return false
	}

	return true
}

func chunkWorks(list []workDocument, size int) [][]workDocument {
	var chunks [][]workDocument

	for size < len(list) {
		list, chunks = list[size:], append(chunks, list[0:size:size])
	}

	if len(list) > 0 {
		chunks = append(chunks, list)
	}

	return chunks
}
