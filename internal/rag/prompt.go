// Package rag orchestrates retrieval-augmented answering: embed the question,
// search the vector index, assemble a grounded prompt, and call the generator.
package rag

import "strings"

const contextHeader = "Context from knowledge base:"

// AssemblePrompt builds the generation prompt from the question and the
// retrieved context snippets, preserving snippet order. With no snippets the
// prompt asks for a general answer and carries no context section.
// Deterministic, no side effects.
func AssemblePrompt(question string, snippets []string) string {
	var b strings.Builder
	if len(snippets) > 0 {
		b.WriteString(contextHeader)
		b.WriteString("\n\n")
		for i, s := range snippets {
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(s)
		}
		b.WriteString("\n\n")
		b.WriteString("Question: ")
		b.WriteString(question)
		b.WriteString("\n\n")
		b.WriteString("Answer the question using the context above when it is relevant. ")
		b.WriteString("If the context does not cover the question, answer from your general knowledge.")
		return b.String()
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\n")
	b.WriteString("Answer from your general knowledge.")
	return b.String()
}
