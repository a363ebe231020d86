package echoapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/fyptrack/apps/api/echo"
	"github.com/trezcool/fyptrack/core/document"
	"github.com/trezcool/fyptrack/core/grade"
	"github.com/trezcool/fyptrack/core/group"
	"github.com/trezcool/fyptrack/core/notification"
	"github.com/trezcool/fyptrack/core/user"
	emailsvc "github.com/trezcool/fyptrack/services/email"
	eventsvc "github.com/trezcool/fyptrack/services/events"
	logsvc "github.com/trezcool/fyptrack/services/logger"
	inmemdb "github.com/trezcool/fyptrack/storage/database/inmem"
)

type blobStub struct{}

func (blobStub) Store(_ []byte, _ string, groupID int, docType string, version int) (string, error) {
	return fmt.Sprintf("mem://%d/%s/v%d", groupID, docType, version), nil
}

type testApp struct {
	server   echoapi.Server
	userRepo user.Repository
	userSvc  *user.Service
}

func setup(t *testing.T) *testApp {
	t.Helper()

	db := inmemdb.NewDB()
	userRepo := inmemdb.NewUserRepository(db)
	groupRepo := inmemdb.NewGroupRepository(db)
	docRepo := inmemdb.NewDocumentRepository(db)
	deadlineRepo := inmemdb.NewDeadlineRepository(db)

	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	notifSvc := notification.NewService(
		inmemdb.NewNotificationRepository(db), emailsvc.NewConsoleServiceMock(), eventsvc.NewCapturePublisher(), logger)
	userSvc := user.NewService(nil, userRepo)
	groupSvc := group.NewService(nil, groupRepo, userRepo)
	docSvc := document.NewService(nil, docRepo, groupRepo, userRepo, deadlineRepo, notifSvc, blobStub{})
	deadlineSvc := document.NewDeadlineService(deadlineRepo, userRepo, notifSvc)
	gradeSvc := grade.NewService(nil, inmemdb.NewGradeRepository(db), groupRepo, userRepo, docRepo, docSvc, notifSvc)

	server := echoapi.NewServer(&echoapi.Options{
		Address:        ":0",
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        userSvc,
		GroupSvc:       groupSvc,
		DocSvc:         docSvc,
		DeadlineSvc:    deadlineSvc,
		GradeSvc:       gradeSvc,
		NotifSvc:       notifSvc,
	})
	return &testApp{server: server, userRepo: userRepo, userSvc: userSvc}
}

func (app *testApp) createUser(t *testing.T, name, email, pwd string, role user.Role, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{Name: name, Email: email, Role: role, IsActive: isActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, usr.SetPassword(pwd))
	usr, err := app.userRepo.CreateUser(usr)
	require.NoError(t, err)
	return usr
}

func (app *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) login(t *testing.T, email, pwd string) string {
	t.Helper()
	rec := app.request(t, http.MethodPost, "/v1/users/login", "", echoapi.LoginRequest{Email: email, Password: pwd})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp echoapi.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestServer_home(t *testing.T) {
	app := setup(t)
	rec := app.request(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to FYPTrack API!", rec.Body.String())
}

func TestServer_login(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Student", "stu@test.cd", "s3cret", user.RoleStudent, true)
	app.createUser(t, "Gone", "gone@test.cd", "s3cret", user.RoleStudent, false)

	t.Run("valid credentials", func(t *testing.T) {
		token := app.login(t, "stu@test.cd", "s3cret")
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/users/login",
			"", echoapi.LoginRequest{Email: "stu@test.cd", Password: "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/users/login",
			"", echoapi.LoginRequest{Email: "ghost@test.cd", Password: "nope"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/users/login",
			"", echoapi.LoginRequest{Email: "gone@test.cd", Password: "s3cret"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestServer_auth(t *testing.T) {
	app := setup(t)
	stu := app.createUser(t, "Student", "stu@test.cd", "s3cret", user.RoleStudent, true)
	app.createUser(t, "Chair", "chair@test.cd", "s3cret", user.RoleManagingCommittee, true)

	t.Run("requests without a token are rejected", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code) // missing auth header
	})

	t.Run("me returns the authenticated user", func(t *testing.T) {
		token := app.login(t, "stu@test.cd", "s3cret")
		rec := app.request(t, http.MethodGet, "/v1/users/me", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.Equal(t, stu.ID, usr.ID)
		assert.Empty(t, usr.PasswordHash)
	})

	t.Run("role middleware blocks students from committee routes", func(t *testing.T) {
		token := app.login(t, "stu@test.cd", "s3cret")
		rec := app.request(t, http.MethodGet, "/v1/users", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("committee routes open to the managing committee", func(t *testing.T) {
		token := app.login(t, "chair@test.cd", "s3cret")
		rec := app.request(t, http.MethodGet, "/v1/users", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("deactivation invalidates outstanding tokens", func(t *testing.T) {
		usr := app.createUser(t, "Leaver", "leaver@test.cd", "s3cret", user.RoleStudent, true)
		token := app.login(t, "leaver@test.cd", "s3cret")

		inactive := false
		_, err := app.userRepo.UpdateUser(usr, &inactive)
		require.NoError(t, err)

		rec := app.request(t, http.MethodGet, "/v1/users/me", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestServer_documentListings(t *testing.T) {
	app := setup(t)
	sup := app.createUser(t, "Sup", "sup@test.cd", "s3cret", user.RoleSupervisor, true)
	app.createUser(t, "Student", "stu@test.cd", "s3cret", user.RoleStudent, true)

	t.Run("supervisors list their own documents", func(t *testing.T) {
		token := app.login(t, "sup@test.cd", "s3cret")
		rec := app.request(t, http.MethodGet, fmt.Sprintf("/v1/documents?supervisor_id=%d", sup.ID), token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("supervisors cannot list another supervisor's documents", func(t *testing.T) {
		token := app.login(t, "sup@test.cd", "s3cret")
		rec := app.request(t, http.MethodGet, fmt.Sprintf("/v1/documents?supervisor_id=%d", sup.ID+100), token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("status listings stay committee only", func(t *testing.T) {
		token := app.login(t, "stu@test.cd", "s3cret")
		rec := app.request(t, http.MethodGet, "/v1/documents?status=SUBMITTED", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestServer_notifications(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Student", "stu@test.cd", "s3cret", user.RoleStudent, true)
	token := app.login(t, "stu@test.cd", "s3cret")

	rec := app.request(t, http.MethodGet, "/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = app.request(t, http.MethodGet, "/v1/notifications/unread/count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 0}`, rec.Body.String())
}

func TestServer_errorKinds(t *testing.T) {
	app := setup(t)
	app.createUser(t, "Chair", "chair@test.cd", "s3cret", user.RoleManagingCommittee, true)
	token := app.login(t, "chair@test.cd", "s3cret")

	t.Run("not found carries a kind", func(t *testing.T) {
		rec := app.request(t, http.MethodGet, "/v1/groups/999", token, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "not_found", resp["kind"])
	})

	t.Run("validation errors carry field details", func(t *testing.T) {
		rec := app.request(t, http.MethodPost, "/v1/groups", token, map[string]string{"name": ""})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "validation_error", resp["kind"])
	})

	t.Run("duplicate group names conflict", func(t *testing.T) {
		body := map[string]string{"name": "Team Alpha", "project_title": "P"}
		rec := app.request(t, http.MethodPost, "/v1/groups", token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = app.request(t, http.MethodPost, "/v1/groups", token, body)
		require.Equal(t, http.StatusConflict, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "name_conflict", resp["kind"])
	})
}
