package pdf

import (
	"regexp"
	"strings"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// abstractEnd matches headings that close the abstract.
var abstractEnd = regexp.MustCompile(`(?i)^(\d+\.?\s*)?(introduction|keywords?|key\s+words|background|main|significance)\b`)

// maxAbstractLen caps abstracts whose end heading was not recognized.
const maxAbstractLen = 3000

// findDOI finds a DOI in text.
func findDOI(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}

// findTitle returns the first line long enough to be a title that is not
// a running header.
func findTitle(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) > 20 && !isHeaderLine(line) && !isAbstractHeading(line) {
			return line
		}
	}
	return ""
}

// findAbstract returns the text following an "Abstract" heading up to the
// next section heading. Text on the heading line itself ("Abstract: We ...")
// is kept.
func findAbstract(text string) string {
	lines := strings.Split(text, "\n")
	start := -1
	var parts []string

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !isAbstractHeading(trimmed) {
			continue
		}
		start = i + 1
		rest := strings.TrimSpace(trimmed[len("abstract"):])
		rest = strings.TrimLeft(rest, ":.- ")
		if rest != "" {
			parts = append(parts, rest)
		}
		break
	}
	if start < 0 {
		return ""
	}

	length := 0
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if abstractEnd.MatchString(trimmed) {
			break
		}
		if trimmed == "" {
			if length > 0 && len(parts) > 0 && strings.HasSuffix(parts[len(parts)-1], ".") {
				break
			}
			continue
		}
		parts = append(parts, trimmed)
		length += len(trimmed)
		if length >= maxAbstractLen {
			break
		}
	}

	return joinHyphenated(parts)
}

// isAbstractHeading reports whether line starts the abstract section.
func isAbstractHeading(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	if !strings.HasPrefix(lower, "abstract") {
		return false
	}
	rest := lower[len("abstract"):]
	return rest == "" || strings.ContainsAny(rest[:1], ":.- \t")
}

// joinHyphenated joins lines with spaces, mending words split across lines.
func joinHyphenated(parts []string) string {
	var joined string
	for i, p := range parts {
		if i > 0 {
			if strings.HasSuffix(joined, "-") && len(joined) > 1 {
				joined = joined[:len(joined)-1]
			} else {
				joined += " "
			}
		}
		joined += p
	}
	return strings.Join(strings.Fields(joined), " ")
}

// isHeaderLine checks if a line is likely a header/footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "copyright"), strings.Contains(lower, "©"):
		return true
	case strings.Contains(lower, "article") && strings.Contains(lower, "published"):
		return true
	case strings.HasPrefix(lower, "doi") || strings.HasPrefix(lower, "http"):
		return true
	}
	return false
}
