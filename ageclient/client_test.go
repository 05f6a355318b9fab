package ageclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/ageSchemaClient-sub007/schema"
	"github.com/standardbeagle/ageSchemaClient-sub007/session"
)

func TestConnect_RequiresHost(t *testing.T) {
	cfg := session.DefaultConfig()
	_, err := Connect(cfg)
	assert.Error(t, err)
}

func TestCreateBatchLoader_ReturnsLoaderBoundToSchema(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Host = "localhost"
	client, err := Connect(cfg)
	require.NoError(t, err)
	defer client.Close()

	sch := &schema.Schema{Vertices: map[string]*schema.VertexLabel{}, Edges: map[string]*schema.EdgeLabel{}}
	l := client.CreateBatchLoader(sch)
	assert.NotNil(t, l)
}

func TestClient_Ping_FailsWithoutServer(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1 // nothing listens here
	client, err := Connect(cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	assert.Error(t, client.Ping(ctx))
}
