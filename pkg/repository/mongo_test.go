package repository

import (
	"context"
	"testing"
	"time"

	"github.com/example/foodshop/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMongo_ActivityLog(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	repo, err := NewMongoRepository(&config.MongoDBConfig{URI: uri, Database: "foodshop", Collection: "activity_log"})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(ctx) })

	require.NoError(t, repo.CreateActivityLog(ctx, &ActivityLog{
		Service: "checkout", Action: "order_created", EntityID: "o1", Data: bson.M{"total": 2000},
		CreatedAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, repo.CreateActivityLog(ctx, &ActivityLog{
		Service: "orders", Action: "status_changed", EntityID: "o1", Data: bson.M{"to": "paid"},
	}))
	require.NoError(t, repo.CreateActivityLog(ctx, &ActivityLog{
		Service: "orders", Action: "status_changed", EntityID: "o2",
	}))

	logs, err := repo.ListActivity(ctx, "o1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "status_changed", logs[0].Action)
	assert.NotEmpty(t, logs[0].ID)
}
