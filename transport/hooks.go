package transport

import (
	"regexp"
	"time"
)

// Hooks captures exactly the deltas §4.6's vendor table enumerates per
// device type: which commands enter/exit config mode, disable paging, set
// terminal width, save or reboot, and which regexes recognize device
// errors or confirmation dialogs. Session provides the shared default
// implementation (§9); a vendor plugin is nothing but a Hooks value, so
// the dispatch table (vendor.Table) is data, not a switch statement.
//
// The function-valued fields are escape hatches for the handful of
// vendors whose behavior isn't expressible as a command list — Extreme
// EXOS re-learning its prompt every command, MikroTik's username suffix,
// Ubiquiti UniFi's two-stage telnet hop. Every other vendor leaves them
// nil and gets the base Session behavior.
type Hooks struct {
	// Newline is the line terminator written after every command.
	// Defaults to "\n"; MikroTik overrides to "\r\n" and the Aruba family
	// to "\r" (Open Question decision, see DESIGN.md).
	Newline string
	PTY     PTYSize

	// RequiresEnable marks Cisco-family-style CLIs that gate config mode
	// behind a privilege-escalation step.
	RequiresEnable bool
	EnableCmd      string

	// TelnetFallback marks vendors whose gear may still answer only on
	// telnet in the field; Connect retries over DialTelnet when
	// the SSH dial fails outright rather than surfacing ErrConnect.
	TelnetFallback bool

	// LearnPrompt overrides the default prompt.LearnBase learner.
	LearnPrompt             func(bannerText string) string
	RelearnPromptPerCommand bool

	// PagingNeedsEnable marks vendors (HP ProCurve, Aruba) whose paging
	// command is only accepted once privileged — Session enters enable
	// mode before running DisablePagingCmds rather than before config.
	PagingNeedsEnable bool
	DisablePagingCmds []string
	TerminalWidthCmds []string
	ExtraPrepCmds     []string
	ParallelPrep      bool

	EnterConfigCmds   []string
	ConfigPromptRegex *regexp.Regexp
	CommitCmds        []string
	ExitConfigCmds    []string

	GetConfigCmd   string
	SaveConfigCmds []string
	RebootCmd      string

	ConfirmationRegex *regexp.Regexp
	// ConfirmationReply overrides the default "y" answer written when
	// ConfirmationRegex matches. It receives the chunk that matched so a
	// vendor whose ConfirmationRegex covers more than one distinct dialog
	// can tell them apart — Linux's sudo password prompt is the one case
	// in §4.6 that isn't a yes/no dialog at all, and MikroTik's license
	// prompt needs "n" while its reboot confirmation still needs "y".
	ConfirmationReply func(s *Session, chunk string) string
	ErrorRegex        *regexp.Regexp

	LogoutCmds        []string
	SaveOnLogoutRegex *regexp.Regexp
	SaveOnLogoutReply string

	// Full overrides for vendors that don't fit the command-list shape.
	ConnectFunc     func(s *Session) error
	PrepareFunc     func(s *Session) error
	DisconnectFunc  func(s *Session) error
	SendCommandFunc func(s *Session, command string) (string, error)
}

var defaultErrorRegex = regexp.MustCompile(`(?i)invalid ?(input|command)|syntax error|unknown command|error:|% ?invalid|% ?unrecognized|command failed|failed|not found`)
var defaultConfirmRegex = regexp.MustCompile(`(?i)\[confirm\]|\[y/n\]\s*:?\s*$|\(y/n\)\s*:?\s*$|\[yes\]|continue\?|are you sure`)
var passwordPromptRegex = regexp.MustCompile(`(?i)password:?\s*$`)

// DefaultHooks returns the base Session's defaults; every vendor table
// entry starts from this and overrides only its deltas.
func DefaultHooks() Hooks {
	return Hooks{
		Newline:           "\n",
		PTY:               DefaultPTY,
		EnableCmd:         "enable",
		GetConfigCmd:      "show running-config",
		ExitConfigCmds:    []string{"end"},
		LogoutCmds:        []string{"exit"},
		ConfirmationRegex: defaultConfirmRegex,
		ErrorRegex:        defaultErrorRegex,
	}
}

// enablePasswordWindow is how long after sending "enable" the Session
// watches for a Password: prompt (Open Question decision, §9).
const enablePasswordWindow = 2 * time.Second
