package prompt

import (
	"fmt"
	"strings"

	"docrag-be/pkg/llm"
	"docrag-be/pkg/rag/retrieve"
)

// ContextualBuilder assembles the chat request sent to the model: a system
// message carrying the retrieved material, the prior turns, and the query.
type ContextualBuilder struct {
	query    string
	history  []llm.Message
	passages []retrieve.Passage
	budget   int // max characters of passage text in the prompt
}

func NewContextualBuilder(query string, history []llm.Message, passages []retrieve.Passage, budget int) *ContextualBuilder {
	return &ContextualBuilder{
		query:    query,
		history:  history,
		passages: passages,
		budget:   budget,
	}
}

// Build returns the messages for the model together with the passages that
// actually made it into the prompt. Only included passages may be cited.
func (b *ContextualBuilder) Build() ([]llm.Message, []retrieve.Passage) {
	included := b.fitToBudget()

	var sys strings.Builder
	b.writeTask(&sys)
	b.writeReferenceMaterial(&sys, included)
	b.writeGuidelines(&sys, included)

	messages := make([]llm.Message, 0, len(b.history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: sys.String()})
	messages = append(messages, b.history...) // oldest first
	messages = append(messages, llm.Message{Role: "user", Content: b.query})

	return messages, included
}

// fitToBudget keeps passages in rank order while their combined content fits
// the character budget. The top passage is always kept, truncated if needed,
// so the model never silently loses its best evidence.
func (b *ContextualBuilder) fitToBudget() []retrieve.Passage {
	if len(b.passages) == 0 || b.budget <= 0 {
		return nil
	}

	var included []retrieve.Passage
	used := 0
	for _, p := range b.passages {
		size := len([]rune(p.Content))
		if used+size > b.budget {
			if len(included) == 0 {
				runes := []rune(p.Content)
				p.Content = string(runes[:b.budget])
				included = append(included, p)
			}
			break
		}
		included = append(included, p)
		used += size
	}
	return included
}

func (b *ContextualBuilder) writeTask(sys *strings.Builder) {
	sys.WriteString("<task>\n")
	sys.WriteString("You are a knowledgeable assistant answering questions about the user's uploaded documents.\n")
	sys.WriteString("Your goal is to provide exactly what the user needs based on their question and the reference material.\n")
	sys.WriteString("</task>\n\n")
}

func (b *ContextualBuilder) writeReferenceMaterial(sys *strings.Builder, included []retrieve.Passage) {
	if len(included) == 0 {
		return
	}

	sys.WriteString("<reference_material>\n")
	for i, p := range included {
		label := p.Source
		if p.Page != nil {
			label = fmt.Sprintf("%s, page %d", p.Source, *p.Page+1)
		}
		sys.WriteString(fmt.Sprintf("[%d] (%s)\n", i+1, label))
		sys.WriteString(p.Content)
		sys.WriteString("\n\n")
	}
	sys.WriteString("</reference_material>\n\n")
}

func (b *ContextualBuilder) writeGuidelines(sys *strings.Builder, included []retrieve.Passage) {
	sys.WriteString("<guidelines>\n")
	if len(included) == 0 {
		sys.WriteString("No relevant material was found in the user's documents for this question.\n")
		sys.WriteString("Say so plainly, then answer from general knowledge only if the question permits it, making clear the answer is not grounded in their documents.\n")
	} else {
		sys.WriteString("Base your answer strictly on the reference material provided.\n")
		sys.WriteString("Be complete - don't skip relevant information from the material.\n")
		sys.WriteString("If the material doesn't contain what's being asked, say so honestly.\n")
	}
	sys.WriteString("</guidelines>\n")
}
