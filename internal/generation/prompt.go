package generation

import (
	"fmt"
	"strings"
)

// Template is the instruction frame wrapped around context and question.
type Template struct {
	Lang        string
	Instruction string
	ContextHead string
	QueryHead   string
	AnswerHead  string
}

var templates = map[string]Template{
	"ar": {
		Lang:        "ar",
		Instruction: "اعتمد فقط على المعلومات التالية للإجابة.\nإذا لم تجد الإجابة قل لا أعرف.",
		ContextHead: "المعلومات:",
		QueryHead:   "السؤال:",
		AnswerHead:  "الإجابة:",
	},
	"en": {
		Lang:        "en",
		Instruction: "Answer using only the information below.\nIf the answer is not there, say you don't know.",
		ContextHead: "Information:",
		QueryHead:   "Question:",
		AnswerHead:  "Answer:",
	},
}

// TemplateFor returns the prompt template for a language code.
func TemplateFor(lang string) (Template, error) {
	tmpl, ok := templates[lang]
	if !ok {
		return Template{}, fmt.Errorf("no prompt template for language %q", lang)
	}
	return tmpl, nil
}

// BuildPrompt lays out instruction, context and query. The result depends
// only on its inputs.
func BuildPrompt(tmpl Template, context, query string) string {
	var b strings.Builder
	b.WriteString(tmpl.Instruction)
	b.WriteString("\n\n")
	b.WriteString(tmpl.ContextHead)
	b.WriteString("\n")
	b.WriteString(context)
	b.WriteString("\n\n")
	b.WriteString(tmpl.QueryHead)
	b.WriteString("\n")
	b.WriteString(query)
	b.WriteString("\n\n")
	b.WriteString(tmpl.AnswerHead)
	b.WriteString("\n")
	return b.String()
}
