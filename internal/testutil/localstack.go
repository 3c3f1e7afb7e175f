package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"
)

// LocalStack runs a LocalStack container for integration tests that need
// a real SigV4-validating service instead of the in-memory fake.
type LocalStack struct {
	container *localstack.LocalStackContainer

	// Endpoint is the http endpoint to point the client at.
	Endpoint string

	// Region is the signing region LocalStack expects.
	Region string

	// AccessKeyID and SecretAccessKey are the placeholder credentials
	// LocalStack accepts.
	AccessKeyID     string
	SecretAccessKey string
}

// StartLocalStack launches a container and waits for its health endpoint.
// The container is terminated when the test ends.
func StartLocalStack(ctx context.Context, t *testing.T) *LocalStack {
	t.Helper()

	container, err := localstack.Run(ctx,
		"localstack/localstack:latest",
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort("4566").
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("start localstack: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate localstack: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("localstack host: %v", err)
	}
	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		t.Fatalf("localstack port: %v", err)
	}

	return &LocalStack{
		container:       container,
		Endpoint:        fmt.Sprintf("http://%s:%s", host, port.Port()),
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	}
}
