// SPDX-License-Identifier: EPL-2.0

package voice

import "fmt"

// Language is a short language code as used by the studio front end.
type Language string

var languageNames = map[Language]string{
	"id": "Indonesian",
	"en": "English",
	"ar": "Arabic",
	"jp": "Japanese",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"zh": "Chinese",
	"ko": "Korean",
	"hi": "Hindi",
	"pt": "Portuguese",
	"ru": "Russian",
	"it": "Italian",
	"tr": "Turkish",
	"vi": "Vietnamese",
	"th": "Thai",
	"nl": "Dutch",
	"pl": "Polish",
}

// Name returns the English name of the language, or "English" for an
// unknown code.
func (l Language) Name() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return "English"
}

// Prompt is a single speech request.
type Prompt struct {
	Text     string
	Emotion  Emotion
	Language Language
}

func (p Prompt) String() string {
	return fmt.Sprintf("Say this %s in %s: %s", p.Emotion.Phrase(), p.Language.Name(), p.Text)
}
