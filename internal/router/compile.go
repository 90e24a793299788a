package router

import (
	"fmt"
	"strings"
	"unicode"
)

// sourcesMarker is the section delimiter the specialists append to their
// answers. Compilation strips the section; the deduplicated source list is
// delivered separately.
const sourcesMarker = "📚 **Sources referenced:**"

// partialNotice prefixes the answer when the step ceiling forced
// compilation before the pipeline finished.
const partialNotice = "⚠️ Analysis incomplete: the step limit was reached before all specialists finished. The assessment below covers the completed steps only."

const qaAssessmentTemplate = `**FDA Auditor Assessment:**

Based on my review and specialist analysis, here are the key findings:

%s

**Regulatory Context:**
This assessment is based on current FDA guidance documents and regulatory requirements. The analysis above provides the technical details you requested from our %s specialist.

**Recommendations:**
Please review the specific requirements and guidance documents referenced above. If you need clarification on any specific aspect or have additional questions about compliance requirements, I'm here to help.

Do you need any additional clarifications?`

const gapAssessmentHeader = `**FDA Auditor Assessment - Compliance Gap Analysis:**

Based on comprehensive analysis by our specialist team, here is the regulatory assessment:

`

const gapAssessmentFooter = `**Overall Assessment:**
The compliance gap analysis has been completed by our specialist team. Please review the findings above and address any identified gaps before proceeding with your regulatory submission.

Do you need any additional clarifications?`

// compile synthesizes the final auditor answer from the accumulated
// specialist messages and stores it in st.Final.
func (r *Router) compile(st *State, terminationReason string) {
	type response struct {
		agent   string
		content string
	}
	var responses []response
	for _, m := range st.Messages() {
		if m.Agent == "" {
			continue
		}
		content := m.Content
		if i := strings.Index(content, sourcesMarker); i >= 0 {
			content = strings.TrimSpace(content[:i])
		}
		responses = append(responses, response{agent: m.Agent, content: content})
	}

	var final string
	switch {
	case len(responses) == 0:
		final = fmt.Sprintf("Analysis completed (%s). Please let me know if you need any additional information or clarification.", terminationReason)
	case st.Mode == ModeQuestionAnswering:
		last := responses[len(responses)-1]
		final = fmt.Sprintf(qaAssessmentTemplate, last.content, strings.ReplaceAll(last.agent, "_", " "))
	default:
		var b strings.Builder
		b.WriteString(gapAssessmentHeader)
		for _, resp := range responses {
			fmt.Fprintf(&b, "**%s Findings:**\n%s\n\n", titleWords(strings.ReplaceAll(resp.agent, "_", " ")), resp.content)
		}
		b.WriteString(gapAssessmentFooter)
		final = b.String()
	}

	if st.Partial {
		final = partialNotice + "\n\n" + final
	}
	st.Final = final
}

// titleWords uppercases the first letter of each space-separated word.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
