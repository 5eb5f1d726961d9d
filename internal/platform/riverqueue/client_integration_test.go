//go:build integration

package riverqueue_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/certs-api/internal/certificates"
	"github.com/phrazzld/certs-api/internal/config"
	"github.com/phrazzld/certs-api/internal/platform/riverqueue"
	"github.com/phrazzld/certs-api/internal/task/mocks"
	"github.com/phrazzld/certs-api/internal/testdb"
)

func TestClient_DispatchAndWork(t *testing.T) {
	dbURL := testdb.GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("DATABASE_URL or CERTS_TEST_DB_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	log := testdb.Logger(t)
	require.NoError(t, riverqueue.Migrate(ctx, pool, log))

	worked := make(chan certificates.GenerationRequest, 1)
	runner := &mocks.CertificateRunner{
		RunFn: func(ctx context.Context, req certificates.GenerationRequest) certificates.Outcome {
			worked <- req
			return certificates.Outcome{Kind: certificates.Delegated}
		},
	}

	client, err := riverqueue.NewClient(pool, runner, config.TaskConfig{
		Backend:     "river",
		WorkerCount: 1,
		QueueSize:   1,
		MaxRetries:  2,
		RetryDelay:  time.Second,
		RiverQueue:  river.QueueDefault,
	}, log)
	require.NoError(t, err)

	require.NoError(t, client.Start(ctx))
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		assert.NoError(t, client.Stop(stopCtx))
	})

	student := uuid.NewString()
	id, err := client.Dispatch(ctx, certificates.GenerationRequest{
		Student:   student,
		CourseKey: "course-v1:edX+DemoX+Demo_Course",
		Extra:     map[string]any{"forced": true},
	})
	require.NoError(t, err)
	_, err = strconv.ParseInt(id, 10, 64)
	assert.NoError(t, err, "job id should be numeric")

	select {
	case req := <-worked:
		assert.Equal(t, student, req.Student)
		assert.Equal(t, true, req.Extra["forced"])
	case <-ctx.Done():
		t.Fatal("job was not worked before the deadline")
	}
}
