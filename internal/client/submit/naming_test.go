package submit

import (
	"testing"

	"github.com/dmitrijs2005/seedclassifier/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name    string
		display string
		uri     string
		want    string
		wantErr bool
	}{
		{name: "whitespace removed, case kept", display: "My Photo", uri: "/storage/DCIM/pic.JPG", want: "MyPhoto.JPG"},
		{name: "tabs and newlines", display: " seed\tbatch\n 7 ", uri: "file:///tmp/x.png", want: "seedbatch7.png"},
		{name: "last dot wins", display: "a", uri: "/tmp/archive.tar.gz", want: "a.gz"},
		{name: "unicode spaces", display: "lot\u00a0B", uri: "/tmp/x.jpeg", want: "lotB.jpeg"},
		{name: "no extension", display: "a", uri: "/tmp/noext", wantErr: true},
		{name: "trailing dot", display: "a", uri: "/tmp/pic.", wantErr: true},
		{name: "dot only in directory", display: "a", uri: "/tmp/dir.v2/pic", wantErr: true},
		{name: "blank display name", display: " \t ", uri: "/tmp/pic.jpg", want: ".jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileName(tt.display, tt.uri)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedItem)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentType(t *testing.T) {
	ct, err := ContentType(models.KindImage, "/tmp/pic.JPG")
	require.NoError(t, err)
	assert.Equal(t, "image/JPG", ct)

	ct, err = ContentType(models.KindFile, "/tmp/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "image/pdf", ct)

	_, err = ContentType(models.Kind("video"), "/tmp/a.mp4")
	require.ErrorIs(t, err, ErrMalformedItem)

	_, err = ContentType(models.KindImage, "/tmp/noext")
	require.ErrorIs(t, err, ErrMalformedItem)
}

func TestBasicAuth(t *testing.T) {
	assert.Equal(t, "Basic YWxpY2U6c2VjcmV0", BasicAuth("alice", "secret"))
	assert.Equal(t, "Basic Og==", BasicAuth("", ""))
}
