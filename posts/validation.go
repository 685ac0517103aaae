package posts

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Rules bounds the content of new posts. Lengths count user-perceived
// characters, so an emoji made of several code points counts once.
type Rules struct {
	MinLength int
	MaxLength int
}

// DefaultRules allow between 1 and 280 characters
var DefaultRules = Rules{MinLength: 1, MaxLength: 280}

// Validate checks content against the rules and returns a *ValidationError
// keyed by "content" when it does not fit
func (r Rules) Validate(content string) error {
	length := uniseg.GraphemeClusterCount(content)

	verr := &ValidationError{}
	switch {
	case !utf8.ValidString(content) || strings.ContainsRune(content, 0):
		verr.add("content", "Post contains invalid characters")
	case length == 0:
		verr.add("content", "Post content is required")
	case length < r.MinLength:
		verr.add("content", fmt.Sprintf("Post must contain at least %d character(s)", r.MinLength))
	case length > r.MaxLength:
		verr.add("content", fmt.Sprintf("Post must contain at most %d character(s)", r.MaxLength))
	}

	if len(verr.FieldErrors) > 0 {
		return verr
	}
	return nil
}
