package services

import (
	"github.com/poyrazK/linkgate/internal/core/domain"
)

// AuthorizeSingle decides what a requester with access may see of account
// when it is looked up in dir. A nil account is NotFound.
func AuthorizeSingle(account *domain.Account, dir domain.Directory, access domain.Access) domain.Outcome {
	if account == nil {
		return domain.NotFound()
	}

	view := account.Redact()
	vis := account.Visibility(dir)
	if vis.IsPublic() {
		return domain.Allowed(view)
	}

	switch access.Kind {
	case domain.AccessNone:
		return domain.RequiresCredential()
	case domain.AccessInvalid:
		return domain.CredentialInvalid()
	}

	if !access.Permits(vis) {
		return domain.Forbidden()
	}
	return domain.Allowed(view)
}

// AuthorizeMany decides which of the accounts linked to a secondary id the
// requester may see. Nil entries are dangling reverse index links and are
// skipped. Public accounts are always returned, even with no credential;
// gated accounts are returned only when access permits them. The result
// keeps the order of accounts.
//
// With gated accounts present:
//   - an invalid credential is CredentialInvalid
//   - if nothing at all is visible, a missing credential is RequiresCredential
//     and an insufficient one is Forbidden
func AuthorizeMany(accounts []*domain.Account, access domain.Access) domain.Outcome {
	views := make([]domain.AccountView, 0, len(accounts))
	gated := 0

	for _, acc := range accounts {
		if acc == nil {
			continue
		}

		vis := acc.Visibility(domain.DirectorySecondary)
		if !vis.IsPublic() {
			gated++
		}
		if access.Permits(vis) {
			views = append(views, acc.Redact())
		}
	}

	if gated == 0 {
		return domain.Allowed(views...)
	}

	switch access.Kind {
	case domain.AccessInvalid:
		return domain.CredentialInvalid()
	case domain.AccessNone:
		if len(views) == 0 {
			return domain.RequiresCredential()
		}
	default:
		if len(views) == 0 {
			return domain.Forbidden()
		}
	}
	return domain.Allowed(views...)
}

// hasGated reports whether any account needs a credential to be seen in dir.
func hasGated(accounts []*domain.Account, dir domain.Directory) bool {
	for _, acc := range accounts {
		if acc != nil && !acc.Visibility(dir).IsPublic() {
			return true
		}
	}
	return false
}
