//go:build !darwin && !linux && !windows

package browser

import "errors"

func openURL(url string) error {
	return errors.New("opening a browser is not supported on this platform")
}
