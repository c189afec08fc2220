package session

import "fmt"

// Messages holds the console strings for one language
type Messages struct {
	Prompt        string // formatted with the exit keyword
	Goodbye       string
	Retrieved     string
	Answer        string
	NoInformation string
	Failure       string
}

var catalog = map[string]Messages{
	"ar": {
		Prompt:        "اكتب سؤالك (اكتب %s للخروج): ",
		Goodbye:       "تم إنهاء البرنامج.",
		Retrieved:     "Chunks retrieved:",
		Answer:        "الإجابة النهائية:",
		NoInformation: "لا توجد معلومات متاحة للإجابة عن هذا السؤال.",
		Failure:       "تعذر الحصول على إجابة، حاول مرة أخرى.",
	},
	"en": {
		Prompt:        "Ask a question (type %s to quit): ",
		Goodbye:       "Goodbye.",
		Retrieved:     "Chunks retrieved:",
		Answer:        "Final answer:",
		NoInformation: "No information available to answer this question.",
		Failure:       "Could not get an answer, please try again.",
	},
}

// MessagesFor returns the console strings for lang
func MessagesFor(lang string) (Messages, error) {
	m, ok := catalog[lang]
	if !ok {
		return Messages{}, fmt.Errorf("no console messages for language %q", lang)
	}
	return m, nil
}
