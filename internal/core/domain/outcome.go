package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrCredentialRequired = errors.New("credential required")
	ErrCredentialInvalid  = errors.New("credential invalid")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidID          = errors.New("invalid identifier")
	ErrMalformedRecord    = errors.New("malformed record")
)

// OutcomeKind is the decision reached for a lookup.
type OutcomeKind int

const (
	OutcomeAllowed OutcomeKind = iota
	OutcomeNotFound
	OutcomeRequiresCredential
	OutcomeCredentialInvalid
	OutcomeForbidden
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeAllowed:
		return "allowed"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeRequiresCredential:
		return "requires_credential"
	case OutcomeCredentialInvalid:
		return "credential_invalid"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Outcome is the result of authorizing one or more accounts. Accounts is
// only populated for OutcomeAllowed and holds redacted views.
type Outcome struct {
	Kind     OutcomeKind
	Accounts []AccountView
}

func Allowed(accounts ...AccountView) Outcome {
	if accounts == nil {
		accounts = []AccountView{}
	}
	return Outcome{Kind: OutcomeAllowed, Accounts: accounts}
}

func NotFound() Outcome           { return Outcome{Kind: OutcomeNotFound} }
func RequiresCredential() Outcome { return Outcome{Kind: OutcomeRequiresCredential} }
func CredentialInvalid() Outcome  { return Outcome{Kind: OutcomeCredentialInvalid} }
func Forbidden() Outcome          { return Outcome{Kind: OutcomeForbidden} }

// Err maps a denial to its sentinel error; it is nil for OutcomeAllowed.
func (o Outcome) Err() error {
	switch o.Kind {
	case OutcomeAllowed:
		return nil
	case OutcomeNotFound:
		return ErrNotFound
	case OutcomeRequiresCredential:
		return ErrCredentialRequired
	case OutcomeCredentialInvalid:
		return ErrCredentialInvalid
	case OutcomeForbidden:
		return ErrForbidden
	default:
		return errors.New("unknown outcome")
	}
}
