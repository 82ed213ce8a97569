// SPDX-License-Identifier: EPL-2.0

package voice

import (
	"fmt"
	"strings"
)

// Emotion is the delivery style requested from the synthesis service.
// Custom carries a free-form descriptor and is the fallback for anything
// ParseEmotion does not recognize.
type Emotion struct {
	kind       emotionKind
	descriptor string
}

type emotionKind int

const (
	normal emotionKind = iota
	horrified
	mysterious
	angry
	bold
	funny
	custom
)

var (
	Normal     = Emotion{kind: normal}
	Horrified  = Emotion{kind: horrified}
	Mysterious = Emotion{kind: mysterious}
	Angry      = Emotion{kind: angry}
	Bold       = Emotion{kind: bold}
	Funny      = Emotion{kind: funny}
)

// Custom returns the fallback emotion rendered as "with a <descriptor>
// expression".
func Custom(descriptor string) Emotion {
	return Emotion{kind: custom, descriptor: descriptor}
}

var emotionNames = map[string]Emotion{
	"normally":   Normal,
	"horrified":  Horrified,
	"mysterious": Mysterious,
	"angry":      Angry,
	"boldly":     Bold,
	"funny":      Funny,
}

// ParseEmotion maps the wire name of an emotion to its variant. Empty
// input means Normal; unknown names become Custom.
func ParseEmotion(name string) Emotion {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Normal
	}
	if e, ok := emotionNames[key]; ok {
		return e
	}
	return Custom(strings.TrimSpace(name))
}

// IsCustom reports whether e is the fallback variant.
func (e Emotion) IsCustom() bool { return e.kind == custom }

// Phrase is the prompt fragment describing the delivery.
func (e Emotion) Phrase() string {
	switch e.kind {
	case normal:
		return "normally"
	case horrified:
		return "with a horrified, trembling tone"
	case mysterious:
		return "with a mysterious, whispering tone"
	case angry:
		return "with an angry, explosive tone"
	case bold:
		return "with a bold, heroic tone"
	case funny:
		return "with a funny, witty tone"
	case custom:
		return fmt.Sprintf("with a %s expression", e.descriptor)
	}
	panic(fmt.Sprintf("voice: unhandled emotion kind %d", e.kind))
}

func (e Emotion) String() string {
	switch e.kind {
	case normal:
		return "normally"
	case horrified:
		return "horrified"
	case mysterious:
		return "mysterious"
	case angry:
		return "angry"
	case bold:
		return "boldly"
	case funny:
		return "funny"
	}
	return e.descriptor
}
