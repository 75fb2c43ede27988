package legal

import (
	"fmt"
	"strings"
)

const guidelines = `Guidelines:
- Cite specific articles, sections, and statute numbers
- Reference applicable laws and regulations from %s
- Explain how laws apply to the user's situation
- Consider case law and judicial precedents where relevant
- Maintain accuracy and clarity in legal interpretation`

const documentAnalysisInstructions = `You are analyzing a legal document. Structure your answer under these headings:
1. Summary
2. Key Clauses & Risks
3. Important Dates & Deadlines
4. Rights & Obligations of each party
5. Financial Terms
6. Termination Rules
7. Recommendations
8. Missing Protections
Be specific and quote the document where it matters.`

// SystemPrompt renders the jurisdiction prompt for a country.
func SystemPrompt(c Country) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a senior attorney specializing in %s's legal system.\n", c.Name)
	fmt.Fprintf(&b, "Provide legal advice based on the %s.\n\n", c.Constitution)
	b.WriteString(c.Description)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, guidelines, c.Name)
	return b.String()
}

// DocumentSystemPrompt is SystemPrompt plus the structured-analysis instructions.
func DocumentSystemPrompt(c Country) string {
	return SystemPrompt(c) + "\n\n" + documentAnalysisInstructions
}

// NoticeAnalysisPrompt is the user prompt for analysing a received notice.
func NoticeAnalysisPrompt(title, content, noticeType string) string {
	return fmt.Sprintf("Analyze this legal notice:\n\nTitle: %s\n\nContent: %s\n\nType: %s", title, content, noticeType)
}

// ReplyReviewPrompt is the user prompt for reviewing a drafted reply.
func ReplyReviewPrompt(noticeType, noticeContent, reply string) string {
	return fmt.Sprintf("Review this legal reply to a %s:\n\nOriginal Notice:\n%s\n\nProposed Reply:\n%s", noticeType, noticeContent, reply)
}
