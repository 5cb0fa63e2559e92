package pump

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// newDecoder returns a transformer that drops ill-formed UTF-8, which is what
// a noisy UART produces after a reset or a baud mismatch. Valid control
// characters are kept so a stray one inside a token fails to parse.
func newDecoder() transform.Transformer {
	return transform.Chain(
		runes.ReplaceIllFormed(),
		runes.Remove(runes.Predicate(func(r rune) bool {
			return r == utf8.RuneError
		})),
	)
}

func decode(t transform.Transformer, raw []byte) string {
	out, _, err := transform.Bytes(t, raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
