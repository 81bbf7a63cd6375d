package credential_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/credential"
)

func TestParseScheme(t *testing.T) {
	testCases := []struct {
		input    string
		expected credential.Scheme
	}{
		{input: "plain", expected: credential.Plain},
		{input: "0", expected: credential.Plain},
		{input: "Y", expected: credential.UnixCrypt},
		{input: "y", expected: credential.UnixCrypt},
		{input: "1", expected: credential.UnixCrypt},
		{input: "MySQL", expected: credential.MySQL},
		{input: "md5", expected: credential.MD5},
		{input: "SHA1", expected: credential.SHA1},
		{input: "drupal7", expected: credential.Drupal7},
		{input: "joomla15", expected: credential.Joomla15},
		{input: "6", expected: credential.Joomla15},
		{input: "ssha", expected: credential.SSHA},
		{input: "sha512", expected: credential.SHA512},
		{input: "9", expected: credential.SHA256},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			s, err := credential.ParseScheme(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, s)
		})
	}
}

func TestParseSchemeUnknown(t *testing.T) {
	for _, input := range []string{"", "bcrypt", "10", " md5"} {
		s, err := credential.ParseScheme(input)
		require.ErrorIs(t, err, credential.ErrUnknownScheme)
		assert.Equal(t, credential.Plain, s)
	}
}

func TestSchemeString(t *testing.T) {
	assert.Equal(t, "Y", credential.UnixCrypt.String())
	assert.Equal(t, "sha256", credential.SHA256.String())
	assert.Equal(t, "scheme(12)", credential.Scheme(12).String())
	assert.Len(t, credential.Schemes(), 10)
}
