package application

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidVideo is returned when no YouTube video id can be extracted from user input.
var ErrInvalidVideo = errors.New("invalid youtube video url or id")

var (
	videoURLRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/|live/|v/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	videoIDRE  = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ParseVideoID extracts the 11-character video id from a watch, short, embed
// or youtu.be URL, or accepts a bare id.
func ParseVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if videoIDRE.MatchString(s) {
		return s, nil
	}
	if m := videoURLRE.FindStringSubmatch(s); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidVideo, input)
}
