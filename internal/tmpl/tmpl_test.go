package tmpl_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/tmpl"
)

func lookup(name string) (string, bool) {
	values := map[string]string{
		"table":        "users",
		"usercolumn":   "name",
		"passwdcolumn": "pw",
		"where":        "o'k",
		"}a":           "brace",
		"]":            "bracket",
	}

	v, ok := values[name]

	return v, ok
}

func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func TestFormat(t *testing.T) {
	testCases := []struct {
		name     string
		template string
		args     []any
		expected string
	}{
		{name: "literal", template: "SELECT 1", expected: "SELECT 1"},
		{name: "zero", template: "%u", args: []any{uint(0)}, expected: "0"},
		{name: "no leading zeros", template: "%u", args: []any{305}, expected: "305"},
		{name: "uint64", template: "[%u]", args: []any{uint64(18446744073709551615)}, expected: "[18446744073709551615]"},
		{name: "escaped arg", template: "'%s'", args: []any{"o'brien"}, expected: "'o''brien'"},
		{name: "raw arg", template: "(%S)", args: []any{"a = 'b'"}, expected: "(a = 'b')"},
		{name: "bytes arg", template: "%s", args: []any{[]byte("x")}, expected: "x"},
		{name: "escaped option", template: "%{where}", expected: "o''k"},
		{name: "raw option", template: "%[where]", expected: "o'k"},
		{name: "missing option", template: "<%{missing}>", expected: "<>"},
		{name: "missing raw option", template: "<%[missing]>", expected: "<>"},
		{name: "unknown directive", template: "100%d %%", expected: "100%d %%"},
		{name: "trailing percent", template: "50%", expected: "50%"},
		{name: "closing brace starts name", template: "<%{}a}>", expected: "<brace>"},
		{name: "closing bracket starts name", template: "<%[]]>", expected: "<bracket>"},
		{name: "lone closing brace", template: "a %{}", expected: "a %{}"},
		{name: "unterminated brace", template: "a %{table", expected: "a %{table"},
		{name: "unterminated bracket", template: "a %[table}", expected: "a %[table}"},
		{
			name:     "auth query",
			template: "SELECT %[passwdcolumn] FROM %[table] WHERE %[usercolumn] = '%s'",
			args:     []any{"alice"},
			expected: "SELECT pw FROM users WHERE name = 'alice'",
		},
		{
			name:     "log insert",
			template: "VALUES ('%s', '%s', %u)",
			args:     []any{"AUTHENTICATION SUCCESS", "bob", 4242},
			expected: "VALUES ('AUTHENTICATION SUCCESS', 'bob', 4242)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf, err := tmpl.Format(tc.template, lookup, quote, false, tc.args...)
			require.NoError(t, err)

			defer buf.Destroy()

			assert.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestFormatArgumentErrors(t *testing.T) {
	testCases := []struct {
		name     string
		template string
		args     []any
	}{
		{name: "missing string", template: "%s"},
		{name: "missing unsigned", template: "%s %u", args: []any{"a"}},
		{name: "string for unsigned", template: "%u", args: []any{"1"}},
		{name: "number for string", template: "%S", args: []any{12}},
		{name: "negative", template: "%u", args: []any{-1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf, err := tmpl.Format(tc.template, lookup, quote, true, tc.args...)
			require.ErrorIs(t, err, tmpl.ErrArgument)
			assert.Nil(t, buf)
		})
	}
}

func TestFormatSecureAndNilCollaborators(t *testing.T) {
	buf, err := tmpl.Format("%{table}:%s", nil, nil, true, "it's")
	require.NoError(t, err)

	defer buf.Destroy()

	assert.True(t, buf.Secure())
	assert.Equal(t, ":it's", buf.String())
}
