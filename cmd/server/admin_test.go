package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAdminArg(t *testing.T) {
	in, err := parseAdminArg("root@example.com:s3cret!:Site Owner")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", in.Email)
	assert.Equal(t, "s3cret!", in.Password)
	assert.Equal(t, "Site Owner", in.Name)

	in, err = parseAdminArg("root@example.com:pw123456")
	require.NoError(t, err)
	assert.Equal(t, "Administrator", in.Name)

	in, err = parseAdminArg("root@example.com:pw123456:Ops: Team")
	require.NoError(t, err)
	assert.Equal(t, "Ops: Team", in.Name)

	for _, bad := range []string{"", "root@example.com", ":pw", "root@example.com:"} {
		_, err := parseAdminArg(bad)
		assert.Error(t, err, bad)
	}
}
