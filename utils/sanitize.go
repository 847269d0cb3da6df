package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips unsafe markup from user-authored text before it is stored.
// Basic formatting tags survive, script and style content does not.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
