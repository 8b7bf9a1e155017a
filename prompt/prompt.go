// Package prompt implements the Prompt Engine (§4.3): learning a device's
// base prompt from a banner line, and recognizing prompt occurrences in a
// streamed buffer so the Channel I/O layer knows a command has finished.
package prompt

import (
	"regexp"
	"strings"
)

// Terminators is the fixed set of characters that end a command prompt.
const Terminators = "#>$%"

var (
	terminatorTail = regexp.MustCompile(`[#>$%] *$`)
	anyPromptTail  = regexp.MustCompile(`(?m)\S+[#>$%] *$`)

	// extremeEXOS matches prompts of the form "[*\s]*HOST.<N>" (§4.3):
	// an optional leading admin marker, the hostname, and an incrementing
	// command counter that must not leak into BasePrompt.
	extremeEXOS = regexp.MustCompile(`^[*\s]*([^.\s]+)\.\d+\s*[#>]?\s*$`)

	// huaweiVRP recognizes both "<HOST>" and "[HOST]" forms.
	huaweiVRP = regexp.MustCompile(`^[<\[]([^>\]]+)[>\]]\s*$`)

	// mikrotik matches "[user@host] >", tolerating the width/codepage
	// suffix RouterOS appends to the username when it was mutated by the
	// MikroTik ConnectFunc (see vendor/mikrotik.go).
	mikrotik = regexp.MustCompile(`^\[([^\]]+)\]\s*>\s*$`)
)

// Model is the learned prompt state for one Session (§3 PromptModel).
type Model struct {
	BasePrompt    string
	ConfigPrompt  string
	EnabledPrompt string
}

// LearnBase strips a trailing terminator (and whitespace) from the last
// non-empty line of a banner and stores the remainder as BasePrompt. This
// is the default learner used by every vendor that doesn't override it.
func LearnBase(bannerText string) string {
	line := LastNonEmptyLine(bannerText)
	return terminatorTail.ReplaceAllString(line, "")
}

// LastNonEmptyLine returns the final line of s that isn't all whitespace.
func LastNonEmptyLine(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return strings.TrimRight(lines[i], " \t")
		}
	}
	return ""
}

// LearnExtremeEXOS implements the Extreme EXOS override: the hostname is
// captured out of "[*\s]*HOST.<N>" and the incrementing suffix discarded.
// The Session must call this again before every sendCommand since the
// counter — and therefore the full prompt text — changes each time.
func LearnExtremeEXOS(bannerText string) string {
	line := LastNonEmptyLine(bannerText)
	if m := extremeEXOS.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return terminatorTail.ReplaceAllString(line, "")
}

// LearnHuaweiVRP recognizes both "<HOST>" and "[HOST]" prompt forms.
func LearnHuaweiVRP(bannerText string) string {
	line := LastNonEmptyLine(bannerText)
	if m := huaweiVRP.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return terminatorTail.ReplaceAllString(line, "")
}

// LearnMikroTik implements the "[user@host] >" format: the base is
// everything before the trailing ">".
func LearnMikroTik(bannerText string) string {
	line := LastNonEmptyLine(bannerText)
	if m := mikrotik.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	idx := strings.LastIndex(line, ">")
	if idx >= 0 {
		return strings.TrimSpace(line[:idx])
	}
	return line
}

// MatchesTail reports whether buf ends in a recognizable prompt: either
// the expected prompt verbatim, basePrompt followed by a terminator, or
// (fastMode) any non-empty tail line ending in a terminator, optionally
// followed by whitespace — exactly the three patterns §4.2's
// readUntilPrompt matches.
func MatchesTail(buf string, expected *regexp.Regexp, basePrompt string, fastMode bool) bool {
	// channelio appends a "\n" after every accumulated message, including
	// the most recent one, so the tail under test always carries a
	// trailing newline the device itself never sent. Strip it (and any
	// trailing whitespace) before anchoring $ against the terminator,
	// otherwise a plain (non-multiline) $ never matches.
	trimmedRight := strings.TrimRight(buf, " \t\r\n")
	if expected != nil && expected.MatchString(trimmedRight) {
		return true
	}
	if basePrompt != "" {
		bp := regexp.QuoteMeta(basePrompt)
		// \S* between the base and the terminator tolerates the mode
		// decorations vendors hang off basePrompt — "(config)", ":conf t",
		// "(config-if)" — without needing a second learned prompt for
		// every privilege level.
		re := regexp.MustCompile(bp + `\S*[` + regexp.QuoteMeta(Terminators) + `] *$`)
		if re.MatchString(trimmedRight) {
			return true
		}
	}
	if fastMode {
		tail := LastNonEmptyLine(buf)
		if tail != "" && anyPromptTail.MatchString(tail+" ") && strings.HasSuffix(buf, " ") {
			return true
		}
		if tail != "" && anyPromptTail.MatchString(tail) {
			return true
		}
	}
	return false
}
