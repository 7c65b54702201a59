package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/loaner-service/internal/booking"
	"github.com/duynhne/loaner-service/internal/clock"
	"github.com/duynhne/loaner-service/internal/core/domain"
	"github.com/duynhne/loaner-service/internal/core/repository"
	logicv1 "github.com/duynhne/loaner-service/internal/logic/v1"
	"github.com/duynhne/loaner-service/internal/session"
	"github.com/duynhne/loaner-service/internal/token"
	webv1 "github.com/duynhne/loaner-service/internal/web/v1"
)

type harness struct {
	t         *testing.T
	apiURI    string
	stateFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := repository.NewMemory()
	deps := logicv1.Deps{}
	issuer := token.NewIssuer("cli-test-secret-at-least-32-bytes-x", "loaner-test", time.Hour, clock.Real())
	users := logicv1.NewUserService(mem.Users(), deps)
	for _, role := range []domain.Role{domain.RoleStudent, domain.RoleStaff, domain.RoleAdmin} {
		_, err := users.Create(context.Background(), domain.CreateUserRequest{
			Name: string(role), Email: string(role) + "@example.com", Password: "password123", Role: role,
		})
		require.NoError(t, err)
	}

	h := webv1.NewHandler(
		logicv1.NewAuthService(mem.Users(), issuer, deps),
		users,
		logicv1.NewEquipmentService(mem.Equipment(), deps),
		logicv1.NewBookingService(mem.Bookings(), mem.Equipment(), mem.Users(), deps),
		issuer,
	)
	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"), nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &harness{t: t, apiURI: srv.URL, stateFile: filepath.Join(t.TempDir(), "session.json")}
}

// run executes one loanerctl invocation and returns stdout.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetArgs(append([]string{"--api-uri", h.apiURI, "--state-file", h.stateFile, "--retries", "0"}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, strings.Join(args, " "))
	return out
}

func (h *harness) login(role domain.Role) {
	h.t.Helper()
	h.mustRun("login", "--email", string(role)+"@example.com", "--password", "password123")
}

func TestCommandTree(t *testing.T) {
	root := NewRootCommand()
	want := map[string][]string{
		"equipment": {"list", "get", "create", "update", "delete"},
		"users":     {"list", "get", "create", "update", "delete"},
		"bookings":  {"list", "request", "approve", "deny", "check-out", "check-in"},
	}

	for parent, children := range want {
		cmd, _, err := root.Find([]string{parent})
		require.NoError(t, err)
		names := map[string]bool{}
		for _, c := range cmd.Commands() {
			names[c.Name()] = true
		}
		for _, child := range children {
			assert.True(t, names[child], "%s %s", parent, child)
		}
	}

	for _, name := range []string{"login", "logout", "whoami"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("api-uri"))
	assert.NotNil(t, root.PersistentFlags().Lookup("state-file"))
}

func TestLoginPersistsSession(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("login", "--email", "admin@example.com", "--password", "password123")
	assert.Contains(t, out, "Signed in as admin@example.com (admin)")

	raw, user, err := session.NewFileStore(h.stateFile).Load()
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	require.NotNil(t, user)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	out = h.mustRun("whoami")
	assert.Contains(t, out, "admin <admin@example.com>")
	assert.Contains(t, out, "role: admin")

	h.mustRun("logout")
	raw, _, err = session.NewFileStore(h.stateFile).Load()
	require.NoError(t, err)
	assert.Empty(t, raw)

	_, err = h.run("", "whoami")
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Contains(t, err.Error(), "/login?returnUrl=loanerctl+whoami")
}

func TestLoginPasswordFromStdin(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("password123\n", "login", "--email", "staff@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "(staff)")

	_, err = h.run("wrong-password\n", "login", "--email", "staff@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestRoleGates(t *testing.T) {
	h := newHarness(t)
	h.login(domain.RoleStudent)

	_, err := h.run("", "users", "list")
	assert.ErrorIs(t, err, ErrNotPermitted)

	_, err = h.run("", "equipment", "create", "--name", "Camera", "--category", "video")
	assert.ErrorIs(t, err, ErrNotPermitted)

	// Denied locally, so the session survives.
	out := h.mustRun("whoami")
	assert.Contains(t, out, "role: student")
}

func TestBookingWorkflow(t *testing.T) {
	h := newHarness(t)

	h.login(domain.RoleStaff)
	out := h.mustRun("-o", "json", "equipment", "create", "--name", "Camera", "--category", "video", "--serial", "SN-7")
	var item domain.Equipment
	require.NoError(t, json.Unmarshal([]byte(out), &item))
	assert.Equal(t, "SN-7", item.Serial)

	h.login(domain.RoleStudent)
	_, err := h.run("", "bookings", "request", item.ID, "--start", "2025-05-03", "--end", "2025-05-01")
	assert.ErrorIs(t, err, booking.ErrInvalidDateRange)

	out = h.mustRun("-o", "json", "bookings", "request", item.ID, "--start", "2025-05-01", "--end", "2025-05-03", "--notes", "lab")
	var b booking.Booking
	require.NoError(t, json.Unmarshal([]byte(out), &b))
	assert.Equal(t, booking.StatusPending, b.Status)

	_, err = h.run("", "bookings", "approve", item.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotPermitted)

	h.login(domain.RoleStaff)
	_, err = h.run("", "bookings", "check-in", item.ID, b.ID)
	assert.ErrorIs(t, err, booking.ErrIllegalTransition)

	out = h.mustRun("bookings", "approve", item.ID, b.ID)
	assert.Contains(t, out, "approved")
	h.mustRun("bookings", "check-out", item.ID, b.ID)
	out = h.mustRun("bookings", "check-in", item.ID, b.ID)
	assert.Contains(t, out, "returned")

	out = h.mustRun("bookings", "list")
	assert.NotContains(t, out, b.ID)
	out = h.mustRun("bookings", "list", "--all")
	assert.Contains(t, out, b.ID)

	out = h.mustRun("equipment", "list", "--status", "available")
	assert.Contains(t, out, "Camera")
}

func TestAdminManagesUsers(t *testing.T) {
	h := newHarness(t)
	h.login(domain.RoleAdmin)

	out := h.mustRun("-o", "json", "users", "create",
		"--name", "Grace", "--email", "grace@example.com", "--phone", "555-0199", "--password", "password123")
	var u domain.User
	require.NoError(t, json.Unmarshal([]byte(out), &u))
	assert.Equal(t, domain.RoleStudent, u.Role)

	out = h.mustRun("users", "update", u.ID, "--role", "staff")
	assert.Contains(t, out, "staff")

	out = h.mustRun("users", "list")
	assert.Contains(t, out, "grace@example.com")

	h.mustRun("users", "delete", u.ID)
	out = h.mustRun("users", "list")
	assert.NotContains(t, out, "grace@example.com")
}

func TestOutputFlagValidated(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "-o", "yaml", "logout")
	assert.ErrorContains(t, err, "--output")
}
