package grid

import "strings"

// Field delimiters recognised in pasted text.
const (
	DelimiterTab   = '\t'
	DelimiterComma = ','
)

// SplitLines splits raw on newlines and drops lines that are blank after
// trimming. Kept lines are returned untrimmed; field cleanup happens later.
func SplitLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	lines := make([]string, 0, len(parts))
	for _, line := range parts {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// CountLines returns how many non-blank lines raw holds.
func CountLines(raw string) int {
	n := 0
	for line := range strings.SplitSeq(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// DetectDelimiter picks tab when line contains one and comma otherwise.
func DetectDelimiter(line string) rune {
	if strings.ContainsRune(line, DelimiterTab) {
		return DelimiterTab
	}
	return DelimiterComma
}

// SplitFields splits line on delim and cleans every field.
func SplitFields(line string, delim rune) []string {
	fields := strings.Split(line, string(delim))
	for i, f := range fields {
		fields[i] = CleanField(f)
	}
	return fields
}

// CleanField trims surrounding whitespace and removes one pair of enclosing
// double quotes. A lone leading or trailing quote is kept.
func CleanField(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return s
}

// parseBlock splits raw into cleaned field rows using one delimiter inferred
// from the first kept line.
func parseBlock(raw string) [][]string {
	lines := SplitLines(raw)
	if len(lines) == 0 {
		return nil
	}
	delim := DetectDelimiter(lines[0])
	out := make([][]string, len(lines))
	for i, line := range lines {
		out[i] = SplitFields(line, delim)
	}
	return out
}
