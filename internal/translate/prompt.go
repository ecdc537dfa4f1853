package translate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const exampleSource = `12
00:05:26,451 --> 00:05:30,247
This place be four,
five miles back,
as you sit now.`

const exampleHebrew = `12
00:05:26,451 --> 00:05:30,247
המקום הזה יהיה ארבע,
חמישה מייל אחורה,
כפי שאתה יושב עכשיו.`

// BuildPrompt embeds a chunk in the translation template. The worked example
// shows that cue numbers and timestamps must pass through untouched.
func BuildPrompt(targetLanguage string, text string) string {
	var sb strings.Builder

	sb.WriteString("Translate the following text to ")
	sb.WriteString(LanguageName(targetLanguage))
	sb.WriteString(" but return the same structure. For example:\n")
	sb.WriteString(exampleSource)
	sb.WriteString("\n")
	if isHebrew(targetLanguage) {
		sb.WriteString("should be translated to:\n")
	} else {
		sb.WriteString("would be translated to Hebrew as:\n")
	}
	sb.WriteString(exampleHebrew)
	sb.WriteString("\n")
	sb.WriteString(text)

	return sb.String()
}

// LanguageName renders a BCP 47 tag ("he", "pt-BR") as its English display
// name. Anything that is not a known tag, such as "Hebrew", is returned
// trimmed as given.
func LanguageName(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return "Hebrew"
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return lang
}

func isHebrew(lang string) bool {
	return strings.EqualFold(LanguageName(lang), "Hebrew")
}
