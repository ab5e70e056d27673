package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Directory names one of the two account namespaces the gateway links.
type Directory string

const (
	DirectoryPrimary   Directory = "primary"   // Chat platform accounts, keyed by numeric id
	DirectorySecondary Directory = "secondary" // Game platform accounts, reached via the reverse index
)

// privacyField is removed from every document before it leaves the gateway.
const privacyField = "privacy"

// Visibility is either public or gated behind a minimum access level.
// The zero value is public.
type Visibility struct {
	level int
}

// Public returns the visibility of an ungated field.
func Public() Visibility { return Visibility{} }

// Gated returns a visibility requiring at least level. Non-positive levels are public.
func Gated(level int) Visibility {
	if level <= 0 {
		return Visibility{}
	}
	return Visibility{level: level}
}

func (v Visibility) IsPublic() bool { return v.level <= 0 }

// Level is the minimum access level required, 0 when public.
func (v Visibility) Level() int { return v.level }

func (v Visibility) String() string {
	if v.IsPublic() {
		return "public"
	}
	return "gated(" + strconv.Itoa(v.level) + ")"
}

// Privacy holds the per-directory visibility ranks of an account.
type Privacy struct {
	Primary   int `json:"primary"`
	Secondary int `json:"secondary"`
}

// Account is one verified identity in the primary directory.
//
// The stored document is kept verbatim minus its privacy object, so fields the
// gateway does not model still reach callers while the privacy levels never do.
type Account struct {
	ID          int64
	DisplayName string
	Privacy     *Privacy

	redacted json.RawMessage
}

// accountDocument is the stored shape written by NewAccount.
type accountDocument struct {
	ID          int64    `json:"id"`
	DisplayName string   `json:"displayName"`
	Privacy     *Privacy `json:"privacy,omitempty"`
}

// NewAccount builds an Account together with its stored document.
func NewAccount(id int64, displayName string, privacy *Privacy) (*Account, []byte, error) {
	doc, err := json.Marshal(accountDocument{ID: id, DisplayName: displayName, Privacy: privacy})
	if err != nil {
		return nil, nil, err
	}
	acc, err := ParseAccount(doc)
	if err != nil {
		return nil, nil, err
	}
	return acc, doc, nil
}

// ParseAccount decodes a stored account document. Both the current field names
// (displayName, privacy.primary, privacy.secondary) and the legacy ones written
// by the verification bot (username, privacy.discord, privacy.roblox) are read.
func ParseAccount(data []byte) (*Account, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: account is not valid JSON", ErrMalformedRecord)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: account is not a JSON object", ErrMalformedRecord)
	}

	acc := &Account{
		ID:          doc.Get("id").Int(),
		DisplayName: firstString(doc, "displayName", "username"),
	}

	if p := doc.Get(privacyField); p.IsObject() {
		acc.Privacy = &Privacy{
			Primary:   privacyLevel(firstResult(p, "primary", "discord")),
			Secondary: privacyLevel(firstResult(p, "secondary", "roblox")),
		}
	}

	redacted, err := stripPrivacy(data)
	if err != nil {
		return nil, err
	}
	acc.redacted = redacted
	return acc, nil
}

// Visibility returns the account's visibility in dir. A missing privacy
// object or sub-field is public.
func (a *Account) Visibility(dir Directory) Visibility {
	if a.Privacy == nil {
		return Public()
	}
	switch dir {
	case DirectoryPrimary:
		return Gated(a.Privacy.Primary)
	case DirectorySecondary:
		return Gated(a.Privacy.Secondary)
	default:
		return Public()
	}
}

// Redact returns the outbound form of the account.
func (a *Account) Redact() AccountView {
	return AccountView{ID: a.ID, doc: a.redacted}
}

// AccountView is a redacted account. It only marshals to the stored document
// with the privacy object removed.
type AccountView struct {
	ID  int64
	doc json.RawMessage
}

func (v AccountView) MarshalJSON() ([]byte, error) {
	if len(v.doc) == 0 {
		return []byte("null"), nil
	}
	return v.doc, nil
}

func stripPrivacy(data []byte) (json.RawMessage, error) {
	out := make([]byte, len(data))
	copy(out, data)
	// Duplicate keys are legal JSON; remove every occurrence.
	for gjson.GetBytes(out, privacyField).Exists() {
		next, err := sjson.DeleteBytes(out, privacyField)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		if len(next) >= len(out) {
			return nil, fmt.Errorf("%w: privacy field could not be removed", ErrMalformedRecord)
		}
		out = next
	}
	return out, nil
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if r := doc.Get(p); r.Exists() {
			return r.String()
		}
	}
	return ""
}

func firstResult(doc gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := doc.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

// privacyLevel decodes a stored privacy level and fails closed: fractions
// round up, levels beyond int range and any other non-empty marker require
// the internal override. Only absent, null, false, "" and numbers <= 0 are public.
func privacyLevel(r gjson.Result) int {
	switch r.Type {
	case gjson.Null, gjson.False:
		return 0
	case gjson.Number:
		return ceilLevel(r.Float())
	case gjson.String:
		if r.Str == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64); err == nil {
			return ceilLevel(f)
		}
		return math.MaxInt
	default:
		return math.MaxInt
	}
}

func ceilLevel(f float64) int {
	switch {
	case math.IsNaN(f), f >= math.MaxInt:
		return math.MaxInt
	case f <= 0:
		return 0
	}
	return int(math.Ceil(f))
}

// ParseLinkedIDs decodes a reverse index entry: a JSON array of primary
// account ids given as strings or numbers.
func ParseLinkedIDs(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: reverse index entry is not valid JSON", ErrMalformedRecord)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsArray() {
		return nil, fmt.Errorf("%w: reverse index entry is not a JSON array", ErrMalformedRecord)
	}

	var ids []string
	var bad error
	doc.ForEach(func(_, v gjson.Result) bool {
		switch v.Type {
		case gjson.String:
			ids = append(ids, v.Str)
		case gjson.Number:
			ids = append(ids, v.Raw)
		default:
			bad = fmt.Errorf("%w: reverse index contains %s", ErrMalformedRecord, v.Type)
			return false
		}
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return ids, nil
}

// LinkedIDsDocument encodes a reverse index entry. Ids are written as strings.
func LinkedIDsDocument(primaryIDs []string) ([]byte, error) {
	if primaryIDs == nil {
		primaryIDs = []string{}
	}
	return json.Marshal(primaryIDs)
}
