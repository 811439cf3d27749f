//go:build integration_test || all_tests

package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ardiland/ardilandcom/internal/auth"
	"github.com/ardiland/ardilandcom/internal/config"
	"github.com/ardiland/ardilandcom/internal/db"
	"github.com/ardiland/ardilandcom/pkg"
	"github.com/ardiland/ardilandcom/pkg/client"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const (
	itServerHost = "127.0.0.1"
	itServerPort = 9300
	itDBName     = "ardiland"
	itUsername   = "admin"
	itPassword   = "admin123"
)

var itServerEndpoint = fmt.Sprintf("http://%s:%d", itServerHost, itServerPort)

type ServerIntegrationTestSuite struct {
	suite.Suite

	dockerPool *dockertest.Pool
	dbPool     *pgxpool.Pool
	server     *Server
	httpClient *http.Client
	teardown   []func()
}

func TestServerIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ServerIntegrationTestSuite))
}

func (s *ServerIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.httpClient = &http.Client{Timeout: 10 * time.Second}

	var err error
	s.dockerPool, err = dockertest.NewPool("")
	s.Require().NoError(err, "create dockertest pool")
	s.Require().NoError(s.dockerPool.Client.Ping(), "ping docker")

	redisPort, err := s.redisSetup()
	if err != nil {
		s.cleanup()
		s.FailNow("redis setup", err.Error())
	}

	pgPort, err := s.postgresSetup(ctx)
	if err != nil {
		s.cleanup()
		s.FailNow("postgres setup", err.Error())
	}

	cfg := &config.Config{
		Host:                        itServerHost,
		Port:                        itServerPort,
		PostgresHost:                "localhost",
		PostgresPort:                pgPort,
		PostgresDBName:              itDBName,
		PostgresUser:                "postgres",
		RedisHost:                   "localhost",
		RedisPort:                   redisPort,
		PrometheusMetricsHost:       itServerHost,
		PrometheusMetricsPort:       "9301",
		AllowedOrigins:              []string{"http://localhost:4200"},
		SessionTTL:                  config.Duration{Duration: time.Hour},
		SessionSweepInterval:        config.Duration{Duration: time.Minute},
		LoginRateLimitAllowedPerMin: 100,
		ContentCacheSizeMB:          1,
		ContentCacheTTL:             config.Duration{Duration: time.Minute},
	}

	s.server, err = NewServer(ctx, NewServerParams{
		Config:      cfg,
		VersionInfo: "integration-test",
	})
	if err != nil {
		s.cleanup()
		s.FailNow("new server", err.Error())
	}

	s.server.Serve(ctx, cfg.Host, cfg.Port)
	s.Require().NoError(s.dockerPool.Retry(func() error {
		resp, err := s.httpClient.Get(itServerEndpoint + "/health")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("health status %d", resp.StatusCode)
		}
		return nil
	}))
}

func (s *ServerIntegrationTestSuite) TearDownSuite() {
	s.cleanup()
}

func (s *ServerIntegrationTestSuite) cleanup() {
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
}

func (s *ServerIntegrationTestSuite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := redisResource.Close(); err != nil {
			log.Errorf("redis teardown: %s", err)
		}
	})

	return redisResource.GetPort("6379/tcp"), nil
}

func (s *ServerIntegrationTestSuite) postgresSetup(ctx context.Context) (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=" + itDBName,
			"POSTGRES_HOST_AUTH_METHOD=trust",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", fmt.Errorf("run postgres: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := pgResource.Close(); err != nil {
			log.Errorf("postgres teardown: %s", err)
		}
	})

	pgPort := pgResource.GetPort("5432/tcp")
	s.dbPool, err = db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost: "localhost",
		DBPort: pgPort,
		DBName: itDBName,
		DBUser: "postgres",
	})
	if err != nil {
		return "", fmt.Errorf("new db pool: %w", err)
	}

	if err := s.dockerPool.Retry(func() error {
		return s.dbPool.Ping(ctx)
	}); err != nil {
		return "", fmt.Errorf("connect to db: %w", err)
	}

	if err := db.EnsureSchema(ctx, s.dbPool); err != nil {
		return "", err
	}

	hash, err := pkg.HashPassword(itPassword, bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	if _, err := auth.NewAdminRepo(s.dbPool).Create(ctx, itUsername, hash); err != nil {
		return "", fmt.Errorf("create admin: %w", err)
	}

	return pgPort, nil
}

func (s *ServerIntegrationTestSuite) newSession() *client.Session {
	session, err := client.NewSession(client.NewClient(itServerEndpoint, s.httpClient), client.NewMemoryTokenStore())
	s.Require().NoError(err)
	return session
}

func (s *ServerIntegrationTestSuite) sessionCount(ctx context.Context) int {
	var count int
	s.Require().NoError(s.dbPool.QueryRow(ctx, `SELECT count(*) FROM session`).Scan(&count))
	return count
}

func (s *ServerIntegrationTestSuite) TestLoginCheckLogout() {
	ctx := context.Background()
	session := s.newSession()

	identity, err := session.Login(ctx, itUsername, itPassword)
	s.Require().NoError(err)
	s.Equal(itUsername, identity.Username)
	s.NotEmpty(identity.ID)

	ok, err := session.Check(ctx)
	s.Require().NoError(err)
	s.True(ok)

	messages, err := session.ListMessages(ctx)
	s.Require().NoError(err)
	s.NotNil(messages)

	token := session.CurrentToken()
	s.Require().NoError(session.Logout(ctx))

	// the revoked token is refused by the gate
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, itServerEndpoint+"/api/auth/me", nil)
	s.Require().NoError(err)
	pkg.SetBearerToken(req, token)
	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.JSONEq(`{"success":false,"error":"Unauthorized","message":"Invalid or expired token"}`, string(body))
}

func (s *ServerIntegrationTestSuite) TestConcurrentSessions() {
	ctx := context.Background()
	before := s.sessionCount(ctx)

	first, second := s.newSession(), s.newSession()
	_, err := first.Login(ctx, itUsername, itPassword)
	s.Require().NoError(err)
	_, err = second.Login(ctx, itUsername, itPassword)
	s.Require().NoError(err)
	s.NotEqual(first.CurrentToken(), second.CurrentToken())
	s.Equal(before+2, s.sessionCount(ctx))

	s.Require().NoError(first.Logout(ctx))
	ok, err := second.Check(ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Require().NoError(second.Logout(ctx))
}

func (s *ServerIntegrationTestSuite) TestInvalidCredentials() {
	ctx := context.Background()
	before := s.sessionCount(ctx)

	for _, creds := range [][2]string{{itUsername, "wrong"}, {"nobody", itPassword}} {
		_, err := s.newSession().Login(ctx, creds[0], creds[1])
		s.Require().Error(err)
		s.True(client.IsUnauthorized(err))
	}
	s.Equal(before, s.sessionCount(ctx))
}

func (s *ServerIntegrationTestSuite) TestExpiredSessionIsDeletedOnUse() {
	ctx := context.Background()
	session := s.newSession()
	_, err := session.Login(ctx, itUsername, itPassword)
	s.Require().NoError(err)

	_, err = s.dbPool.Exec(ctx, `UPDATE session SET expires_at = now() - interval '1 second' WHERE token = $1`, session.CurrentToken())
	s.Require().NoError(err)

	ok, err := session.Check(ctx)
	s.Require().NoError(err)
	s.False(ok)

	var count int
	s.Require().NoError(s.dbPool.QueryRow(ctx, `SELECT count(*) FROM session WHERE expires_at <= now()`).Scan(&count))
	s.Zero(count)
}

func (s *ServerIntegrationTestSuite) TestContactAndPublicContent() {
	ctx := context.Background()

	resp, err := s.httpClient.Post(
		itServerEndpoint+"/api/contact",
		"application/json",
		strings.NewReader(`{"name":"Ana","email":"ana@example.com","message":"Hello"}`),
	)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	session := s.newSession()
	_, err = session.Login(ctx, itUsername, itPassword)
	s.Require().NoError(err)
	defer func() { s.NoError(session.Logout(ctx)) }()

	messages, err := session.ListMessages(ctx)
	s.Require().NoError(err)
	s.Require().NotEmpty(messages)
	s.Equal("ana@example.com", messages[0].Email)

	read, err := session.MarkMessageRead(ctx, messages[0].ID)
	s.Require().NoError(err)
	s.True(read.Read)

	for _, path := range []string{"/api/products", "/api/products/featured", "/api/essays", "/api/essays/featured"} {
		resp, err := s.httpClient.Get(itServerEndpoint + path)
		s.Require().NoError(err)
		resp.Body.Close()
		s.Equal(http.StatusOK, resp.StatusCode, path)
	}
}
