// SPDX-License-Identifier: EPL-2.0

// Package voice builds speech prompts for the synthesis service.
//
// Emotion is a closed set of delivery styles plus a Custom fallback; there
// is no string switch at the call site:
//
//	p := voice.Prompt{
//	    Text:     "The door creaked open.",
//	    Emotion:  voice.ParseEmotion("horrified"),
//	    Language: "en",
//	}
//	p.String() // Say this with a horrified, trembling tone in English: The door creaked open.
package voice
