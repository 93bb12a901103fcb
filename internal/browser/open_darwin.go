//go:build darwin

package browser

import "os/exec"

func openURL(url string) error {
	return exec.Command("open", url).Start()
}
