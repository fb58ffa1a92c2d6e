package detection

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateSizeCeilings(t *testing.T) {
	cases := []struct {
		class       MediaClass
		contentType string
		limit       int64
	}{
		{MediaImage, "image/jpeg", MaxImageBytes},
		{MediaAudio, "audio/mpeg", MaxAudioBytes},
		{MediaVideo, "video/mp4", MaxVideoBytes},
	}

	for _, tc := range cases {
		t.Run(string(tc.class), func(t *testing.T) {
			atLimit := bytes.Repeat([]byte{0x1}, int(tc.limit))
			require.NoError(t, validate(tc.class, tc.contentType, atLimit))

			over := append(atLimit, 0x1)
			err := validate(tc.class, tc.contentType, over)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrFileTooLarge)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			require.Contains(t, vErr.Message, "limit")
		})
	}
}

func TestValidateRejectsUnsupportedMime(t *testing.T) {
	cases := []struct {
		class       MediaClass
		contentType string
	}{
		{MediaImage, "image/gif"},
		{MediaImage, "application/pdf"},
		{MediaAudio, "audio/flac"},
		{MediaVideo, "video/x-msvideo"},
	}

	for _, tc := range cases {
		err := validate(tc.class, tc.contentType, []byte("content"))
		require.ErrorIs(t, err, ErrUnsupportedMediaType, "%s/%s", tc.class, tc.contentType)

		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		for _, allowed := range allowedMimeTypes[tc.class] {
			require.Contains(t, vErr.Message, allowed)
		}
	}
}

func TestValidateTextCharacterLimit(t *testing.T) {
	require.NoError(t, validate(MediaText, "", []byte(strings.Repeat("a", MaxTextChars))))

	err := validate(MediaText, "", []byte(strings.Repeat("a", MaxTextChars+1)))
	require.ErrorIs(t, err, ErrTextTooLong)
}

func TestValidateTextCountsRunesNotBytes(t *testing.T) {
	// Multibyte runes: exactly at the character limit but well past it in bytes.
	require.NoError(t, validate(MediaText, "", []byte(strings.Repeat("щ", MaxTextChars))))
}

func TestValidateEmptyContent(t *testing.T) {
	err := validate(MediaImage, "image/png", nil)
	require.ErrorIs(t, err, ErrEmptyContent)
}
