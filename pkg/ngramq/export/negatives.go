package export

import (
	"fmt"
	"io"
	"strings"
)

// NegativesFileName is the conventional file name of a negative keyword list.
func NegativesFileName(n int) string { return fmt.Sprintf("negative_keywords_%dgram.txt", n) }

// WriteNegatives writes one keyword per line, ready to paste into an ad
// platform.
func WriteNegatives(w io.Writer, keywords []string) error {
	_, err := io.WriteString(w, strings.Join(keywords, "\n"))
	return err
}
