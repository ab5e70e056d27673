package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// Both directories identify accounts with unsigned decimal ids (snowflakes
// on the chat side, user ids on the game side).
var validIDRegex = regexp.MustCompile(`^[0-9]{1,20}$`)

// ValidateAccountID checks that id can be used as a storage key in dir.
func ValidateAccountID(dir Directory, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s id cannot be empty", ErrInvalidID, dir)
	}
	if !validIDRegex.MatchString(id) {
		return fmt.Errorf("%w: %s id '%s' must be decimal digits", ErrInvalidID, dir, id)
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return fmt.Errorf("%w: %s id '%s' is out of range", ErrInvalidID, dir, id)
	}
	return nil
}
