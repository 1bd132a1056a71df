package worker

import "strings"

// Split cuts input into pieces of at least size bytes, except the last. A
// cut is made only right after a '>' whose next non-space byte is '<', so
// pieces usually start and end on tag boundaries. Input without such a
// boundary past size stays in one piece.
func Split(input string, size int) []string {
	if input == "" {
		return nil
	}
	if size <= 0 {
		return []string{input}
	}
	var chunks []string
	for len(input) > size {
		cut := boundary(input, size)
		if cut < 0 {
			break
		}
		chunks = append(chunks, input[:cut])
		input = input[cut:]
	}
	return append(chunks, input)
}

// boundary returns the first cut position at or after from, or -1.
func boundary(s string, from int) int {
	i := max(from-1, 0)
	for i < len(s) {
		j := strings.IndexByte(s[i:], '>')
		if j < 0 {
			return -1
		}
		cut := i + j + 1
		k := cut
		for k < len(s) && isSpace(s[k]) {
			k++
		}
		if k < len(s) && s[k] == '<' {
			return cut
		}
		i = cut
	}
	return -1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
