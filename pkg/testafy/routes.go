package testafy

// AccountMode selects which endpoint family a client talks to.
type AccountMode int

const (
	// ModeAccount uses the authenticated "test/" endpoints.
	ModeAccount AccountMode = iota
	// ModeAnonymous uses the credential-less "try_it_now/" endpoints.
	ModeAnonymous
)

// AnonymousLogin is the reserved login name that selects ModeAnonymous.
const AnonymousLogin = "try_it_now"

// String makes AccountMode satisfy the fmt.Stringer interface.
func (m AccountMode) String() string {
	if m == ModeAnonymous {
		return "anonymous"
	}
	return "account"
}

// ModeFromLogin derives the account mode from a login name.
func ModeFromLogin(login string) AccountMode {
	if login == AnonymousLogin {
		return ModeAnonymous
	}
	return ModeAccount
}

// Operation is a logical API call.
type Operation string

const (
	OpRun         Operation = "run"
	OpStatus      Operation = "status"
	OpPassed      Operation = "stats/passed"
	OpFailed      Operation = "stats/failed"
	OpPlanned     Operation = "stats/planned"
	OpResults     Operation = "results"
	OpScreenshots Operation = "screenshots"
	OpScreenshot  Operation = "screenshot"
	OpPhraseCheck Operation = "phrase_check"
	OpPing        Operation = "ping"
)

const (
	accountPrefix   = "test/"
	anonymousPrefix = "try_it_now/"
)

// Route maps an operation and account mode to a path relative to the base URI.
// phrase_check and ping are shared by both endpoint families.
func Route(op Operation, mode AccountMode) string {
	switch op {
	case OpPhraseCheck, OpPing:
		return string(op)
	}

	if mode == ModeAnonymous {
		return anonymousPrefix + string(op)
	}
	return accountPrefix + string(op)
}
