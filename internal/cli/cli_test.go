package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/mazo/internal/auth"
	"github.com/mrlokans/mazo/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Store.Backend = config.StoreBackendXLSX
	cfg.XLSX.Path = filepath.Join(t.TempDir(), "workspace.xlsx")
	cfg.Database.Path = filepath.Join(t.TempDir(), "mazo.db")
	cfg.Workspace.OwnerEmail = ""
	cfg.Workspace.SeedFile = ""
	return cfg
}

func TestHashTokenCommand_FromStdin(t *testing.T) {
	var out bytes.Buffer
	token := strings.Repeat("t", 32)
	cmd := &HashTokenCommand{Cost: bcrypt.MinCost, in: strings.NewReader(token + "\n"), out: &out}
	require.NoError(t, cmd.Run())

	hash := strings.TrimSpace(strings.TrimPrefix(out.String(), "ADMIN_TOKEN_HASH="))
	assert.NoError(t, auth.CheckToken(token, hash))
}

func TestHashTokenCommand_RejectsShortToken(t *testing.T) {
	cmd := &HashTokenCommand{Cost: bcrypt.MinCost, in: strings.NewReader("short"), out: &bytes.Buffer{}}
	assert.ErrorIs(t, cmd.Run(), auth.ErrTokenTooShort)
}

func TestHashTokenCommand_Generate(t *testing.T) {
	var out bytes.Buffer
	cmd := NewHashTokenCommand(testConfig(t))
	cmd.out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-generate", "-cost", "4"}))
	require.NoError(t, cmd.Run())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	token := strings.TrimPrefix(lines[0], "token: ")
	hash := strings.TrimPrefix(lines[1], "ADMIN_TOKEN_HASH=")
	assert.NoError(t, auth.CheckToken(token, hash))
}

func TestProvisionCommand_RequiresEmail(t *testing.T) {
	cmd := NewProvisionCommand(testConfig(t))
	assert.Error(t, cmd.ParseFlags(nil))
	assert.NoError(t, cmd.ParseFlags([]string{"-check"}))
}

func TestProvisionThenReconcile(t *testing.T) {
	cfg := testConfig(t)

	provision := NewProvisionCommand(cfg)
	require.NoError(t, provision.ParseFlags([]string{"-email", "owner@example.com", "-timeout", "1m"}))
	require.NoError(t, provision.Run())

	check := NewProvisionCommand(cfg)
	require.NoError(t, check.ParseFlags([]string{"-check"}))
	require.NoError(t, check.Run())

	reconcile := NewReconcileCommand(cfg)
	require.NoError(t, reconcile.ParseFlags([]string{"-min-age", "0s"}))
	assert.Equal(t, time.Duration(0), reconcile.MinAge)
	require.NoError(t, reconcile.Run())
}
