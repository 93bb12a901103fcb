// Package browser opens a URL in the operating system's default
// browser. Opening is best-effort convenience; callers treat failure as
// a warning, never as a launch problem.
package browser

// Open launches the default browser on url without waiting for it.
func Open(url string) error {
	return openURL(url)
}
