// Package speech turns diagnoses into spoken text and plays it through a
// Synthesizer one utterance at a time.
package speech

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultRegionalTag is tried when no voice speaks the target language.
const DefaultRegionalTag = "en-IN"

// Voice is one synthesizer voice as reported by the platform.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// SelectVoice picks a voice for target: exact tag, then same base language,
// then en-IN, then the first voice. ok is false only when voices is empty.
func SelectVoice(voices []Voice, target string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	want, err := language.Parse(strings.TrimSpace(target))
	if err == nil {
		for _, v := range voices {
			if tag, err := language.Parse(v.Lang); err == nil && tag.String() == want.String() {
				return v, true
			}
		}
		wantBase, _ := want.Base()
		for _, v := range voices {
			tag, err := language.Parse(v.Lang)
			if err != nil {
				continue
			}
			if base, _ := tag.Base(); base == wantBase {
				return v, true
			}
		}
	}
	for _, v := range voices {
		if v.Lang == DefaultRegionalTag {
			return v, true
		}
	}
	return voices[0], true
}
