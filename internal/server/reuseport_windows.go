//go:build windows

package server

import "errors"

func setReusePort(uintptr) error {
	return errors.New("SO_REUSEPORT is not supported on windows")
}
