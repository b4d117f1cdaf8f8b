// Package testpostgres runs a disposable PostgreSQL container for integration tests.
package testpostgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/xid"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgreSQLMaxIdentifiersCharLength = 60

	// PostgresqlDBImage is the PostgreSQL Image.
	PostgresqlDBImage = "postgres:17-alpine"

	// DBUser is the default username for the PostgreSQL test database.
	DBUser = "multilingual"
	// DBPassword is the default password for the PostgreSQL test database.
	DBPassword = "mult1l1ngu@l"
	// DBName is the default database name for the PostgreSQL test database.
	DBName = "multilingual_test"

	// OccurrenceValue is the number of occurrences to wait for in the log pattern.
	OccurrenceValue = 2
	// TimeoutInSeconds is the timeout duration for container startup in seconds.
	TimeoutInSeconds = 60
)

var invalidIdentifierChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Container is a running PostgreSQL test server.
type Container struct {
	container *tcPostgres.PostgresContainer
	uri       string
}

// Start launches a PostgreSQL container and waits until it accepts connections.
func Start(ctx context.Context) (*Container, error) {
	pgContainer, err := tcPostgres.Run(ctx, PostgresqlDBImage,
		tcPostgres.WithDatabase(DBName),
		tcPostgres.WithUsername(DBUser),
		tcPostgres.WithPassword(DBPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(OccurrenceValue).
				WithStartupTimeout(TimeoutInSeconds*time.Second)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	uri, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(pgContainer)
		return nil, err
	}

	return &Container{container: pgContainer, uri: uri}, nil
}

// URI is the connection URL of the default database.
func (c *Container) URI() string {
	return c.uri
}

// Terminate stops and removes the container.
func (c *Container) Terminate() error {
	return testcontainers.TerminateContainer(c.container)
}

// RandomisedDatabase creates a fresh database on the server and returns its connection URL
// with a cleanup function that drops its public schema.
func (c *Container) RandomisedDatabase(ctx context.Context) (string, func(context.Context), error) {
	connectionURI, err := url.Parse(c.uri)
	if err != nil {
		return "", func(_ context.Context) {}, err
	}

	newDatabaseName := suffixedDatabaseName(connectionURI, xid.New().String())

	connectionURI, err = ensureDatabaseExists(ctx, connectionURI, newDatabaseName)
	if err != nil {
		return "", func(_ context.Context) {}, err
	}

	uri := connectionURI.String()
	return uri, func(ctx context.Context) {
		_ = clearDatabase(ctx, uri)
	}, nil
}

func ensureDatabaseExists(ctx context.Context, postgresURI *url.URL, newDBName string) (*url.URL, error) {
	pool, err := pgxpool.New(ctx, postgresURI.String())
	if err != nil {
		return postgresURI, err
	}
	defer pool.Close()

	if err = pool.Ping(ctx); err != nil {
		return postgresURI, err
	}

	_, err = pool.Exec(ctx, fmt.Sprintf(`CREATE DATABASE %s;`, newDBName))
	if err != nil {
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != "42P04" {
			return postgresURI, err
		}
	}

	target := *postgresURI
	target.Path = "/" + newDBName
	return &target, nil
}

func clearDatabase(ctx context.Context, connectionString string) error {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return err
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `DROP SCHEMA public CASCADE; CREATE SCHEMA public;`)
	return err
}

// suffixedDatabaseName builds a valid PostgreSQL identifier from the URL path and suffix.
func suffixedDatabaseName(currentURI *url.URL, suffix string) string {
	pathPart := strings.ReplaceAll(currentURI.Path, "/", "")
	if pathPart == "" {
		pathPart = "db"
	}

	maxPathLength := postgreSQLMaxIdentifiersCharLength - len(suffix)
	if len(pathPart) > maxPathLength {
		pathPart = pathPart[:maxPathLength]
	}

	result := invalidIdentifierChars.ReplaceAllString(fmt.Sprintf("%s_%s", pathPart, suffix), "_")
	return strings.ToLower(result)
}
