package tools

import (
	"regexp"
	"strings"
)

var (
	deviceNameRe     = regexp.MustCompile(`(?i)(?:device\s+name|product\s+name):\s*([^\n]+)`)
	manufacturerRe   = regexp.MustCompile(`(?i)(?:manufacturer|company):\s*([^\n]+)`)
	modelNumberRe    = regexp.MustCompile(`(?i)(?:model\s+(?:number|#)):\s*([^\n]+)`)
	classificationRe = regexp.MustCompile(`(?i)(?:class\s+(?:I{1,3}|1|2|3)|classification):\s*([^\n]+)`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`),
	}
)

// Metadata holds device information and content statistics extracted from
// a document.
type Metadata struct {
	DeviceName     string   `json:"device_name,omitempty"`
	Manufacturer   string   `json:"manufacturer,omitempty"`
	ModelNumber    string   `json:"model_number,omitempty"`
	Classification string   `json:"classification,omitempty"`
	DatesFound     []string `json:"dates_found"`
	ContentLength  int      `json:"content_length"`
	WordCount      int      `json:"word_count"`
	LineCount      int      `json:"line_count"`
	ParagraphCount int      `json:"paragraph_count"`
}

// ExtractMetadata scans document content for labeled device fields, dates,
// and content statistics.
func ExtractMetadata(content string) *Metadata {
	meta := &Metadata{
		DeviceName:     firstGroup(deviceNameRe, content),
		Manufacturer:   firstGroup(manufacturerRe, content),
		ModelNumber:    firstGroup(modelNumberRe, content),
		Classification: firstGroup(classificationRe, content),
		ContentLength:  len(content),
		WordCount:      len(strings.Fields(content)),
		LineCount:      len(strings.Split(content, "\n")),
	}

	for _, p := range datePatterns {
		meta.DatesFound = append(meta.DatesFound, p.FindAllString(content, -1)...)
	}

	for _, para := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(para) != "" {
			meta.ParagraphCount++
		}
	}
	return meta
}

func firstGroup(re *regexp.Regexp, content string) string {
	if m := re.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
