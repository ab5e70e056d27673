package domain

import (
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// APIKey is an issued credential as stored under the hash of its raw value.
type APIKey struct {
	AccessLevel int
	CreatedAt   time.Time
	Issuer      string // Who issued the key, e.g. "ops" or a user id
}

// apiKeyDocument is the stored shape of an APIKey.
type apiKeyDocument struct {
	AccessLevel int    `json:"access_level"`
	CreatedAt   int64  `json:"created_at"` // unix milliseconds
	Creator     string `json:"creator"`
}

// HashAPIKey returns the lookup key for a raw credential: lowercase hex SHA-512.
// The raw value itself is never stored.
func HashAPIKey(raw string) string {
	sum := sha512.Sum512([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// ParseAPIKey decodes a stored credential record. created_at is unix
// milliseconds; the issuer may be stored as "issuer" or "creator".
func ParseAPIKey(data []byte) (*APIKey, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: api key is not valid JSON", ErrMalformedRecord)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: api key is not a JSON object", ErrMalformedRecord)
	}

	key := &APIKey{
		AccessLevel: accessLevel(doc.Get("access_level")),
		Issuer:      firstString(doc, "issuer", "creator"),
	}
	if ms := doc.Get("created_at").Int(); ms > 0 {
		key.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return key, nil
}

// Document returns the stored form of the key.
func (k *APIKey) Document() ([]byte, error) {
	return json.Marshal(apiKeyDocument{
		AccessLevel: k.AccessLevel,
		CreatedAt:   k.CreatedAt.UnixMilli(),
		Creator:     k.Issuer,
	})
}

// accessLevel decodes a stored access level. Fractions round down and
// anything that is not a finite number grants no level.
func accessLevel(r gjson.Result) int {
	if r.Type != gjson.Number {
		return 0
	}
	f := r.Float()
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(math.Floor(f))
}

// AccessKind classifies the result of resolving a credential.
type AccessKind int

const (
	AccessNone         AccessKind = iota // No credential supplied
	AccessInvalid                        // Supplied but unknown
	AccessUnrestricted                   // Internal override key
	AccessAuthorized                     // Known key with an access level
)

func (k AccessKind) String() string {
	switch k {
	case AccessNone:
		return "none"
	case AccessInvalid:
		return "invalid"
	case AccessUnrestricted:
		return "unrestricted"
	case AccessAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Access is a requester's resolved privilege. Level is only meaningful for
// AccessAuthorized.
type Access struct {
	Kind  AccessKind
	Level int
}

func NoCredential() Access      { return Access{Kind: AccessNone} }
func InvalidCredential() Access { return Access{Kind: AccessInvalid} }
func Unrestricted() Access      { return Access{Kind: AccessUnrestricted} }
func Authorized(level int) Access {
	return Access{Kind: AccessAuthorized, Level: level}
}

// Permits reports whether a may see a field with visibility v.
func (a Access) Permits(v Visibility) bool {
	if v.IsPublic() {
		return true
	}
	switch a.Kind {
	case AccessUnrestricted:
		return true
	case AccessAuthorized:
		return a.Level >= v.Level()
	default:
		return false
	}
}

func (a Access) String() string {
	if a.Kind == AccessAuthorized {
		return "authorized(" + strconv.Itoa(a.Level) + ")"
	}
	return a.Kind.String()
}
