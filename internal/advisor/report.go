package advisor

import (
	"regexp"
	"strings"
)

// Report is an analysis split into its known sections. Missing sections are
// empty.
type Report struct {
	MarketReality       string `json:"marketReality"`
	DestinationIntel    string `json:"destinationIntel"`
	RiskAssessment      string `json:"riskAssessment"`
	OptimizationTactics string `json:"optimizationTactics"`
	InsiderTips         string `json:"insiderTips"`
	FinalVerdict        string `json:"finalVerdict"`
	// Raw is the whole text with Markdown emphasis removed, for unstructured
	// responses.
	Raw string `json:"raw"`
}

// Structured reports whether any of the main sections was found.
func (r Report) Structured() bool {
	return r.MarketReality != "" || r.RiskAssessment != "" || r.OptimizationTactics != "" || r.FinalVerdict != ""
}

// Final verdicts.
const (
	VerdictBuyNow      = "BUY NOW"
	VerdictWait        = "WAIT"
	VerdictChangeRoute = "CHANGE ROUTE"
)

// A header line is any run of list/heading markers followed by a keyword, so
// "## Risk Assessment", "**Risk Assessment**:" and "3. Risk Assessment" all
// match.
const headerPrefix = `(?i)^[#*\d.\s]*`

var (
	sectionBoundary = regexp.MustCompile(headerPrefix + `(?:Market|Risk|Optimization|Insider|Tips|Destination|Intel|Final|Verdict)`)

	marketHeader      = sectionHeader("Market Reality Check", "Market Reality")
	riskHeader        = sectionHeader("Risk Assessment", "Risks")
	optimizationHdr   = sectionHeader("Optimization Tactics", "Optimization", "Tactics")
	insiderHeader     = sectionHeader("Insider Tips", "Insider", "Tips")
	destinationHeader = sectionHeader("Destination Intel", "Destination Intelligence", "Logistics")
	verdictHeader     = sectionHeader("Final Verdict", "Verdict")

	boldMarker    = regexp.MustCompile(`\*\*`)
	headingMarker = regexp.MustCompile(`#{1,6}\s?`)
	bulletMarker  = regexp.MustCompile(`^[*-]\s*`)
	numberMarker  = regexp.MustCompile(`^\d+\.\s*`)
)

func sectionHeader(keywords ...string) *regexp.Regexp {
	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	return regexp.MustCompile(headerPrefix + `(?:` + strings.Join(quoted, "|") + `)[:*]*\s*(.*)$`)
}

// ParseReport splits a model report into sections. Each section runs from its
// header to the next line that starts like any section header.
func ParseReport(text string) Report {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	return Report{
		MarketReality:       extractSection(lines, marketHeader),
		DestinationIntel:    extractSection(lines, destinationHeader),
		RiskAssessment:      extractSection(lines, riskHeader),
		OptimizationTactics: extractSection(lines, optimizationHdr),
		InsiderTips:         extractSection(lines, insiderHeader),
		FinalVerdict:        extractSection(lines, verdictHeader),
		Raw:                 cleanMarkdown(text),
	}
}

func extractSection(lines []string, header *regexp.Regexp) string {
	for i, line := range lines {
		m := header.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		body := []string{m[1]}
		for _, next := range lines[i+1:] {
			if sectionBoundary.MatchString(next) {
				break
			}
			body = append(body, next)
		}
		return cleanMarkdown(strings.Join(body, "\n"))
	}
	return ""
}

func cleanMarkdown(s string) string {
	s = boldMarker.ReplaceAllString(s, "")
	s = headingMarker.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "`", "")
	return strings.TrimSpace(s)
}

// Bullets splits a section into lines with list markers removed. Blank lines
// are dropped.
func Bullets(section string) []string {
	var out []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = bulletMarker.ReplaceAllString(line, "")
		line = numberMarker.ReplaceAllString(line, "")
		out = append(out, strings.TrimSpace(line))
	}
	return out
}

// Verdict normalises the final verdict section to one of the Verdict
// constants, or "" when it names none of them.
func Verdict(r Report) string {
	v := strings.ToLower(r.FinalVerdict)
	switch {
	case strings.Contains(v, "buy"):
		return VerdictBuyNow
	case strings.Contains(v, "wait"):
		return VerdictWait
	case strings.Contains(v, "change"):
		return VerdictChangeRoute
	default:
		return ""
	}
}
