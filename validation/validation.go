// Package validation checks request inputs before they reach the job
// pipeline. Credential and channel existence checks happen upstream; this
// package only rejects values that are structurally unusable.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// channelIDPattern accepts the URL-safe base64 alphabet channel IDs are
// drawn from. Deliberately loose about length so synthetic IDs pass too;
// existence is verified upstream.
var channelIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func ValidateChannelID(channelID string) error {
	if channelID == "" {
		return &ValidationError{Message: "channelId is required"}
	}
	if !channelIDPattern.MatchString(channelID) {
		return &ValidationError{Message: fmt.Sprintf("malformed channel ID: %s", channelID)}
	}
	return nil
}

// SanitizeFolderName reduces a requested download folder name to something
// safe to embed in archive entry paths and a Content-Disposition filename.
// An empty or fully-stripped input falls back to the provided default.
func SanitizeFolderName(name, fallback string) string {
	name = strings.TrimSpace(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}

	cleaned := strings.Trim(b.String(), " .")
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
