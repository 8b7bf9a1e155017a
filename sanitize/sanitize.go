// Package sanitize implements the Output Sanitizer (§4.4): given the raw
// bytes captured between writing a command and matching the next prompt,
// it strips everything that is an artifact of the terminal rather than
// part of the device's answer.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	ansiCSI      = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)
	tripleBlank  = regexp.MustCompile(`\n{3,}`)
	aristaStage  = regexp.MustCompile(`\(s[12]\)`)
	junosContext = regexp.MustCompile(`\[edit\]|\{master:\d+\}|\{backup:\d+\}|admin@\S+[#>%]?`)
	huaweiPrompt = regexp.MustCompile(`(?m)^[<\[][^\n<>\[\]]+[>\]] *$`)
	pagerMore    = regexp.MustCompile(`-+ ?[Mm]ore ?-+|---- ?[Mm]ore ?----`)
	pagerEnter   = regexp.MustCompile(`(?i)press enter to continue`)
	trailingTerm = regexp.MustCompile(`[#>$%] *$`)
)

// Sanitize cleans raw output captured while sending command against a
// device. It does not know the device's prompt string; trailing-prompt
// removal works on the last non-empty line the same way the Prompt Engine
// learns it (§4.3): a line whose only distinguishing feature is a trailing
// mode terminator is the prompt, not content.
func Sanitize(raw, command string) string {
	out := strings.ReplaceAll(raw, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")

	out = removeCommandEcho(out, command)
	out = removeTrailingPromptLine(out)

	out = aristaStage.ReplaceAllString(out, "")
	out = junosContext.ReplaceAllString(out, "")
	out = huaweiPrompt.ReplaceAllString(out, "")
	out = pagerMore.ReplaceAllString(out, "")
	out = pagerEnter.ReplaceAllString(out, "")

	out = ansiCSI.ReplaceAllString(out, "")

	out = tripleBlank.ReplaceAllString(out, "\n\n")

	return strings.TrimSpace(out)
}

// removeCommandEcho removes the first occurrence of the submitted command
// text at the head of the buffer — devices that don't suppress local echo
// repeat back exactly what was written before producing output.
func removeCommandEcho(s, command string) string {
	command = strings.TrimRight(command, "\r\n")
	if command == "" {
		return s
	}
	lines := strings.SplitN(s, "\n", 2)
	if len(lines) == 0 {
		return s
	}
	if strings.TrimSpace(lines[0]) == strings.TrimSpace(command) {
		if len(lines) == 2 {
			return lines[1]
		}
		return ""
	}
	// echo may be glued to the first line without a following newline yet
	if idx := strings.Index(s, command); idx == 0 {
		return s[len(command):]
	}
	return s
}

// removeTrailingPromptLine drops the last non-empty line if it looks like
// a bare prompt (ends in one of the mode terminators with nothing else of
// substance), mirroring the Prompt Engine's own terminator set.
func removeTrailingPromptLine(s string) string {
	trimmed := strings.TrimRight(s, "\n")
	lines := strings.Split(trimmed, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimRight(lines[i], " \t")
		if line == "" {
			continue
		}
		if trailingTerm.MatchString(line) {
			lines = lines[:i]
		}
		break
	}
	return strings.Join(lines, "\n")
}
