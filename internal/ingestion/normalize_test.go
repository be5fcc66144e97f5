package ingestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_LineEndings(t *testing.T) {
	got := Normalize("one\r\ntwo\rthree")
	assert.Equal(t, "one\ntwo\nthree", got)
}

func TestNormalize_OCRArtifacts(t *testing.T) {
	got := Normalize("She said “hello” and left.")
	assert.Equal(t, `She said "hello" and left.`, got)
}

func TestNormalize_HyphenatedLineBreak(t *testing.T) {
	got := Normalize("The experi-\nment succeeded.")
	assert.Equal(t, "The experiment succeeded.", got)
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	got := Normalize("a    b\t\tc\n\n\n\n\nd")
	assert.Equal(t, "a b c\n\nd", got)
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   \n\t  "))
}

func TestSourceID_Stable(t *testing.T) {
	a := SourceID("The cat sat on the mat.")
	b := SourceID("The cat sat on the mat.")
	c := SourceID("The dog sat on the mat.")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestFromHTML_StripsChrome(t *testing.T) {
	html := `<html><head><style>p{color:red}</style></head><body>
		<nav><a href="/">Home</a></nav>
		<article>
			<h1>Weather Report</h1>
			<p>The weather is sunny today.</p>
			<script>alert("hi")</script>
		</article>
		<footer>Copyright</footer>
	</body></html>`

	got, err := FromHTML(strings.NewReader(html))
	require.NoError(t, err)

	assert.Contains(t, got, "Weather Report")
	assert.Contains(t, got, "The weather is sunny today.")
	assert.NotContains(t, got, "Home")
	assert.NotContains(t, got, "Copyright")
	assert.NotContains(t, got, "alert")
}

func TestFromHTML_FallsBackToBody(t *testing.T) {
	got, err := FromHTML(strings.NewReader("<html><body>plain text only</body></html>"))
	require.NoError(t, err)
	assert.Equal(t, "plain text only", got)
}
