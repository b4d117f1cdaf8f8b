package testpostgres

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuffixedDatabaseName(t *testing.T) {
	testCases := []struct {
		name   string
		uri    string
		suffix string
		want   string
	}{
		{name: "path and suffix", uri: "postgres://u:p@localhost/multilingual_test", suffix: "ABC", want: "multilingual_test_abc"},
		{name: "empty path", uri: "postgres://u:p@localhost", suffix: "x1", want: "db_x1"},
		{name: "invalid characters", uri: "postgres://u:p@localhost/my-db", suffix: "a.b", want: "my_db_a_b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := url.Parse(tc.uri)
			require.NoError(t, err)
			require.Equal(t, tc.want, suffixedDatabaseName(u, tc.suffix))
		})
	}
}

func TestSuffixedDatabaseNameLength(t *testing.T) {
	u, err := url.Parse("postgres://u:p@localhost/" + strings.Repeat("d", 100))
	require.NoError(t, err)

	name := suffixedDatabaseName(u, "suffix")
	require.LessOrEqual(t, len(name), postgreSQLMaxIdentifiersCharLength+1)
	require.True(t, strings.HasSuffix(name, "_suffix"))
}
