package httpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParentOfTopLevel(t *testing.T) {
	assert.Equal(t, "/", parentOf("/file.txt"))
}

func TestParentOfNested(t *testing.T) {
	assert.Equal(t, "/a", parentOf("/a/b/"))
	assert.Equal(t, "/a", parentOf("/a/b"))
}

func TestParentOfRoot(t *testing.T) {
	assert.Equal(t, "/", parentOf("/"))
}

func TestEncodePathSegmentsKeepsSeparators(t *testing.T) {
	assert.Equal(t, "some/dir", encodePathSegments("some/dir"))
	assert.Equal(t, "with%20space/plain", encodePathSegments("with space/plain"))
	assert.Equal(t, "", encodePathSegments(""))
}

func TestContentTypeForKnownExtension(t *testing.T) {
	assert.Contains(t, contentTypeFor("hello.txt"), "text/plain")
}

func TestContentTypeForUnknownExtensionFallsBackToOctetStream(t *testing.T) {
	assert.Equal(t, "application/octet-stream", contentTypeFor("file.unknownext"))
}
