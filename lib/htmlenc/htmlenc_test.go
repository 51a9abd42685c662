package htmlenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeIsIdentityWithoutSpecialChars(t *testing.T) {
	assert.Equal(t, "hello world 123", Encode("hello world 123"))
}

func TestEncodeEscapesSpecialChars(t *testing.T) {
	assert.Equal(t, "&amp;&quot;&apos;&lt;&gt;", Encode(`&"'<>`))
}
