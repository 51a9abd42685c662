package httpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalHeaderName(t *testing.T) {
	assert.Equal(t, "Content-Type", canonicalHeaderName("content-type"))
	assert.Equal(t, "X-Request-Id", canonicalHeaderName("x-request-id"))
}

func TestReasonPhraseKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "OK", reasonPhrase(200))
	assert.Equal(t, "Not Found", reasonPhrase(404))
	assert.Equal(t, "Unknown", reasonPhrase(999))
}
