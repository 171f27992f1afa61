package cmd

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cloudly/miniapp/internal/telegram"
)

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return strings.TrimSpace(out.String())
}

func TestHashPasswordCmd(t *testing.T) {
	hash := execute(t, HashPasswordCmd(), "", "--cost", "4", "s3cret")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	hash = execute(t, HashPasswordCmd(), "from-stdin\n", "--cost", "4")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("from-stdin")))
}

func TestInitDataCmd(t *testing.T) {
	payload := execute(t, InitDataCmd(), "", "--token", "1:abc", "--user-id", "77", "--first-name", "Ann")

	data, ok := telegram.VerifyInitData(payload, "1:abc")
	require.True(t, ok)
	require.NotNil(t, data.User)
	assert.Equal(t, int64(77), data.User.ID)
	assert.Equal(t, "Ann", data.User.FirstName)

	values, err := url.ParseQuery(payload)
	require.NoError(t, err)
	assert.NotEmpty(t, values.Get("auth_date"))
}

func TestSeedCmd(t *testing.T) {
	dsn := t.TempDir() + "/seed.db?_pragma=foreign_keys(1)"

	out := execute(t, SeedCmd(), "", "--driver", "sqlite", "--db", dsn)
	assert.Equal(t, "created 1 course(s)", out)

	out = execute(t, SeedCmd(), "", "--driver", "sqlite", "--db", dsn)
	assert.Equal(t, "created 0 course(s)", out)
}
