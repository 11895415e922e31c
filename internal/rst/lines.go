package rst

import "strings"

func splitLines(src string) []string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(expandTabs(line), " ")
	}
	return lines
}

func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			spaces := 8 - col%8
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func isAdornment(line string) bool {
	line = strings.TrimSpace(line)
	if len(line) < 2 || line == "::" || line == ".." {
		return false
	}
	c := line[0]
	if !strings.ContainsRune(adornmentChars, rune(c)) {
		return false
	}
	for i := 1; i < len(line); i++ {
		if line[i] != c {
			return false
		}
	}
	return true
}

func isBullet(line string) bool {
	return len(line) >= 2 && strings.ContainsRune("*-+", rune(line[0])) && line[1] == ' '
}

// isOption matches option list items such as "-m <message>" or "--all".
func isOption(line string) bool {
	if len(line) < 2 || line[0] != '-' || isAdornment(line) {
		return false
	}
	c := line[1]
	if c == '-' {
		if len(line) < 3 {
			return false
		}
		c = line[2]
	}
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// splitOption separates the option text from an inline description,
// which must follow at least two spaces.
func splitOption(line string) (term, rest string) {
	if idx := strings.Index(line, "  "); idx > 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx:])
	}
	return strings.TrimSpace(line), ""
}

func startsDefinition(lines []string, i int) bool {
	if i+1 >= len(lines) || isBlank(lines[i]) || isBlank(lines[i+1]) {
		return false
	}
	if indentOf(lines[i]) != 0 || indentOf(lines[i+1]) == 0 {
		return false
	}
	return !strings.HasSuffix(strings.TrimSpace(lines[i]), "::")
}

// indentedEnd returns the end of the run of lines starting at start that
// are blank or indented by at least min, excluding trailing blank lines.
func indentedEnd(lines []string, start, min int) int {
	j := start
	for j < len(lines) {
		if !isBlank(lines[j]) && indentOf(lines[j]) < min {
			break
		}
		j++
	}
	for j > start && isBlank(lines[j-1]) {
		j--
	}
	return j
}

func dedent(lines []string) []string {
	min := -1
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		if n := indentOf(line); min < 0 || n < min {
			min = n
		}
	}
	if min <= 0 {
		return append([]string(nil), lines...)
	}
	return stripIndent(lines, min)
}

func stripIndent(lines []string, n int) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if indentOf(line) >= n {
			out[i] = line[n:]
		} else {
			out[i] = strings.TrimLeft(line, " ")
		}
	}
	return out
}

// stripOptions drops a leading directive option block (":name: value").
func stripOptions(lines []string) []string {
	i := 0
	for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), ":") && !isBlank(lines[i]) {
		i++
	}
	return lines[i:]
}

func joinLines(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
