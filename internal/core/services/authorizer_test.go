package services

import (
	"encoding/json"
	"testing"

	"github.com/poyrazK/linkgate/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(t *testing.T, id int64, privacy *domain.Privacy) *domain.Account {
	t.Helper()
	acc, _, err := domain.NewAccount(id, "user", privacy)
	require.NoError(t, err)
	return acc
}

func ids(t *testing.T, out domain.Outcome) []int64 {
	t.Helper()
	res := make([]int64, 0, len(out.Accounts))
	for _, v := range out.Accounts {
		res = append(res, v.ID)
	}
	return res
}

func assertRedacted(t *testing.T, out domain.Outcome) {
	t.Helper()
	for _, v := range out.Accounts {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal(raw, &doc))
		assert.NotContains(t, doc, "privacy")
	}
}

var allAccess = []domain.Access{
	domain.NoCredential(),
	domain.InvalidCredential(),
	domain.Unrestricted(),
	domain.Authorized(0),
	domain.Authorized(1),
	domain.Authorized(10),
}

func TestAuthorizeSingle_NotFound(t *testing.T) {
	for _, a := range allAccess {
		assert.Equal(t, domain.OutcomeNotFound, AuthorizeSingle(nil, domain.DirectoryPrimary, a).Kind)
	}
}

func TestAuthorizeSingle_PublicIgnoresCredential(t *testing.T) {
	records := []*domain.Account{
		account(t, 1, nil),
		account(t, 1, &domain.Privacy{Primary: 0, Secondary: 5}),
		account(t, 1, &domain.Privacy{Primary: -1}),
	}
	for _, rec := range records {
		for _, a := range allAccess {
			out := AuthorizeSingle(rec, domain.DirectoryPrimary, a)
			assert.Equal(t, domain.OutcomeAllowed, out.Kind, "access %v", a)
			assert.Equal(t, []int64{1}, ids(t, out))
			assertRedacted(t, out)
		}
	}
}

func TestAuthorizeSingle_Gated(t *testing.T) {
	rec := account(t, 2, &domain.Privacy{Primary: 3})

	tests := []struct {
		name   string
		access domain.Access
		want   domain.OutcomeKind
	}{
		{"no credential", domain.NoCredential(), domain.OutcomeRequiresCredential},
		{"invalid credential", domain.InvalidCredential(), domain.OutcomeCredentialInvalid},
		{"internal override", domain.Unrestricted(), domain.OutcomeAllowed},
		{"level above", domain.Authorized(5), domain.OutcomeAllowed},
		{"level equal", domain.Authorized(3), domain.OutcomeAllowed},
		{"level below", domain.Authorized(1), domain.OutcomeForbidden},
		{"level zero", domain.Authorized(0), domain.OutcomeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := AuthorizeSingle(rec, domain.DirectoryPrimary, tt.access)
			assert.Equal(t, tt.want, out.Kind)
			if tt.want == domain.OutcomeAllowed {
				assert.Equal(t, []int64{2}, ids(t, out))
				assertRedacted(t, out)
			} else {
				assert.Empty(t, out.Accounts)
			}
		})
	}
}

func TestAuthorizeSingle_UsesDirectoryLevel(t *testing.T) {
	rec := account(t, 3, &domain.Privacy{Primary: 0, Secondary: 9})
	assert.Equal(t, domain.OutcomeAllowed, AuthorizeSingle(rec, domain.DirectoryPrimary, domain.NoCredential()).Kind)
	assert.Equal(t, domain.OutcomeRequiresCredential, AuthorizeSingle(rec, domain.DirectorySecondary, domain.NoCredential()).Kind)
}

func TestAuthorizeSingle_Idempotent(t *testing.T) {
	rec := account(t, 2, &domain.Privacy{Primary: 3})
	first := AuthorizeSingle(rec, domain.DirectoryPrimary, domain.Authorized(5))
	second := AuthorizeSingle(rec, domain.DirectoryPrimary, domain.Authorized(5))
	a, _ := json.Marshal(first.Accounts)
	b, _ := json.Marshal(second.Accounts)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, 3, rec.Visibility(domain.DirectoryPrimary).Level(), "authorization must not mutate the account")
}

func TestAuthorizeMany(t *testing.T) {
	pub1 := account(t, 1, nil)
	pub2 := account(t, 2, &domain.Privacy{Primary: 7, Secondary: 0})
	gated4 := account(t, 3, &domain.Privacy{Secondary: 4})
	gated2 := account(t, 4, &domain.Privacy{Secondary: 2})

	tests := []struct {
		name     string
		accounts []*domain.Account
		access   domain.Access
		want     domain.OutcomeKind
		wantIDs  []int64
	}{
		{"all public without credential", []*domain.Account{pub1, pub2}, domain.NoCredential(), domain.OutcomeAllowed, []int64{1, 2}},
		{"all public with invalid credential", []*domain.Account{pub1, pub2}, domain.InvalidCredential(), domain.OutcomeAllowed, []int64{1, 2}},
		{"dangling links skipped", []*domain.Account{nil, pub1, nil}, domain.NoCredential(), domain.OutcomeAllowed, []int64{1}},
		{"only dangling links", []*domain.Account{nil, nil}, domain.NoCredential(), domain.OutcomeAllowed, []int64{}},
		{"mixed without credential", []*domain.Account{pub1, pub2, gated4}, domain.NoCredential(), domain.OutcomeAllowed, []int64{1, 2}},
		{"mixed with sufficient credential", []*domain.Account{pub1, pub2, gated4}, domain.Authorized(5), domain.OutcomeAllowed, []int64{1, 2, 3}},
		{"mixed with insufficient credential", []*domain.Account{pub1, gated4}, domain.Authorized(1), domain.OutcomeAllowed, []int64{1}},
		{"mixed with invalid credential", []*domain.Account{pub1, gated4}, domain.InvalidCredential(), domain.OutcomeCredentialInvalid, nil},
		{"gated only without credential", []*domain.Account{gated4}, domain.NoCredential(), domain.OutcomeRequiresCredential, nil},
		{"gated only insufficient", []*domain.Account{gated4, gated2}, domain.Authorized(1), domain.OutcomeForbidden, nil},
		{"gated only partial", []*domain.Account{gated4, gated2}, domain.Authorized(3), domain.OutcomeAllowed, []int64{4}},
		{"gated only override", []*domain.Account{gated4, gated2}, domain.Unrestricted(), domain.OutcomeAllowed, []int64{3, 4}},
		{"order preserved", []*domain.Account{gated2, pub1, gated4, pub2}, domain.Authorized(10), domain.OutcomeAllowed, []int64{4, 1, 3, 2}},
		{"every gated candidate inspected", []*domain.Account{gated4, gated2}, domain.Authorized(2), domain.OutcomeAllowed, []int64{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := AuthorizeMany(tt.accounts, tt.access)
			require.Equal(t, tt.want, out.Kind)
			if tt.want == domain.OutcomeAllowed {
				assert.Equal(t, tt.wantIDs, ids(t, out))
				assertRedacted(t, out)
			} else {
				assert.Empty(t, out.Accounts)
			}
		})
	}
}

func TestAuthorizeMany_EmptyResultMarshalsAsArray(t *testing.T) {
	out := AuthorizeMany(nil, domain.NoCredential())
	raw, err := json.Marshal(out.Accounts)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestAuthorize_IrregularStoredLevels(t *testing.T) {
	parse := func(t *testing.T, privacy string) *domain.Account {
		t.Helper()
		acc, err := domain.ParseAccount([]byte(`{"id":1,"username":"a","privacy":{"discord":` + privacy + `,"roblox":` + privacy + `}}`))
		require.NoError(t, err)
		return acc
	}

	tests := []struct {
		name    string
		privacy string
		access  domain.Access
		want    domain.OutcomeKind
	}{
		{"fraction needs a credential", `0.5`, domain.NoCredential(), domain.OutcomeRequiresCredential},
		{"fraction rounds up", `0.5`, domain.Authorized(1), domain.OutcomeAllowed},
		{"fraction above key level", `3.5`, domain.Authorized(3), domain.OutcomeForbidden},
		{"fraction below key level", `3.5`, domain.Authorized(4), domain.OutcomeAllowed},
		{"huge level needs a credential", `1e20`, domain.NoCredential(), domain.OutcomeRequiresCredential},
		{"huge level beats any key", `1e20`, domain.Authorized(1 << 40), domain.OutcomeForbidden},
		{"huge level yields to override", `1e20`, domain.Unrestricted(), domain.OutcomeAllowed},
		{"garbage level needs a credential", `"abc"`, domain.NoCredential(), domain.OutcomeRequiresCredential},
		{"garbage level beats any key", `"abc"`, domain.Authorized(100), domain.OutcomeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := parse(t, tt.privacy)

			single := AuthorizeSingle(acc, domain.DirectoryPrimary, tt.access)
			assert.Equal(t, tt.want, single.Kind, "single: %s", single.Kind)

			many := AuthorizeMany([]*domain.Account{acc}, tt.access)
			assert.Equal(t, tt.want, many.Kind, "many: %s", many.Kind)
			assertRedacted(t, single)
			assertRedacted(t, many)
		})
	}
}
