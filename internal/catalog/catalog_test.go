package catalog_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"s3-resources/internal/catalog"
	"s3-resources/pkg/code"
	"s3-resources/pkg/e"
	"s3-resources/pkg/manifest"
	"s3-resources/pkg/protocol"
)

func setupCatalog(t *testing.T) *catalog.Catalog {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// :memory: 每个连接是独立的库
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, catalog.InitTables(db))
	return catalog.New(db)
}

func seed(t *testing.T, c *catalog.Catalog, private bool) *protocol.Package {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	pkg := &protocol.Package{
		ID:    "pkg-1",
		Name:  "weather-data",
		Title: "Weather Data",
		Resources: []*protocol.Resource{
			{ID: "res-1", Name: "Daily Readings", Format: "CSV", URLType: protocol.LocationLocal, Created: &created},
			{ID: "res-2", Name: "Live Feed", Format: "API", URL: "https://example.org/feed"},
		},
	}
	meta := []byte(`{"name":"weather-data","title":"Weather Data","num_resources":2}`)
	require.NoError(t, c.CreatePackage(context.Background(), pkg, private, meta))
	return pkg
}

func TestShowPackage(t *testing.T) {
	c := setupCatalog(t)
	seed(t, c, false)
	ctx := context.Background()

	byID, err := c.ShowPackage(ctx, "pkg-1")
	require.NoError(t, err)
	byName, err := c.ShowPackage(ctx, "weather-data")
	require.NoError(t, err)
	assert.Equal(t, byID, byName)

	require.Len(t, byID.Resources, 2)
	assert.Equal(t, "res-1", byID.Resources[0].ID)
	assert.Equal(t, "res-2", byID.Resources[1].ID)
	assert.Equal(t, protocol.LocationLocal, byID.Resources[0].URLType)
	require.NotNil(t, byID.Resources[0].Created)
	assert.True(t, byID.Resources[0].Created.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Nil(t, byID.Resources[0].LastModified)

	_, err = c.ShowPackage(ctx, "nope")
	assert.True(t, e.IsCode(err, code.NotFound))
}

func TestCreateResourceAppends(t *testing.T) {
	c := setupCatalog(t)
	seed(t, c, false)
	ctx := context.Background()

	res := &protocol.Resource{PackageID: "pkg-1", Name: "Extra", Format: "txt"}
	require.NoError(t, c.CreateResource(ctx, res))
	assert.NotEmpty(t, res.ID)

	pkg, err := c.ShowPackage(ctx, "pkg-1")
	require.NoError(t, err)
	require.Len(t, pkg.Resources, 3)
	assert.Equal(t, res.ID, pkg.Resources[2].ID)

	err = c.CreateResource(ctx, &protocol.Resource{PackageID: "missing", Name: "x"})
	assert.True(t, e.IsCode(err, code.NotFound))
}

func TestShowMetadata(t *testing.T) {
	c := setupCatalog(t)
	seed(t, c, false)

	doc, err := c.ShowMetadata(context.Background(), "weather-data")
	require.NoError(t, err)

	out := manifest.Generate("Weather Data", doc)
	assert.Contains(t, string(out), "Num Resources: 2\r\n")
	assert.Contains(t, string(out), "Title: 'Weather Data'\r\n")
}

func TestShowMetadataWithoutStoredDocument(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()
	require.NoError(t, c.CreatePackage(ctx, &protocol.Package{Name: "bare", Title: "Bare"}, false, nil))

	doc, err := c.ShowMetadata(ctx, "bare")
	require.NoError(t, err)
	out := manifest.Generate("Bare", doc)
	assert.Equal(t, "# Metadata for Bare\r\n---\r\nName: 'bare'\r\nTitle: 'Bare'\r\n", string(out))
}

func TestUpdateResource(t *testing.T) {
	c := setupCatalog(t)
	seed(t, c, false)
	ctx := context.Background()

	res, err := c.ShowResource(ctx, "res-1")
	require.NoError(t, err)

	res.URL = "https://bucket.example.org/weather-data/daily-readings.csv"
	res.URLType = protocol.LocationRemote
	require.NoError(t, c.UpdateResource(ctx, res))
	assert.NotNil(t, res.LastModified)

	got, err := c.ShowResource(ctx, "res-1")
	require.NoError(t, err)
	assert.Equal(t, res.URL, got.URL)
	assert.Equal(t, protocol.LocationRemote, got.URLType)

	err = c.UpdateResource(ctx, &protocol.Resource{ID: "res-1"})
	assert.True(t, e.IsCode(err, code.ValidationError))

	err = c.UpdateResource(ctx, &protocol.Resource{ID: "ghost", Name: "x"})
	assert.True(t, e.IsCode(err, code.NotFound))

	_, err = c.ShowResource(ctx, "ghost")
	assert.True(t, e.IsCode(err, code.NotFound))
}

func TestListPackages(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, c.CreatePackage(ctx, &protocol.Package{Name: name}, false, nil))
	}

	names, err := c.ListPackages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestCheckAccess(t *testing.T) {
	c := setupCatalog(t)
	seed(t, c, true)
	ctx := context.Background()

	err := c.CheckAccess(ctx, "", "weather-data")
	assert.True(t, e.IsNotAuthorized(err))

	require.NoError(t, c.AddMember(ctx, "pkg-1", "alice"))
	assert.NoError(t, c.CheckAccess(ctx, "alice", "weather-data"))
	assert.True(t, e.IsNotAuthorized(c.CheckAccess(ctx, "bob", "pkg-1")))

	assert.True(t, e.IsCode(c.CheckAccess(ctx, "alice", "missing"), code.NotFound))
}

func TestRecordRun(t *testing.T) {
	c := setupCatalog(t)
	ctx := context.Background()

	_, err := c.LastRun(ctx)
	assert.True(t, e.IsCode(err, code.NotFound))

	start := time.Unix(1700000000, 0)
	run := &catalog.Run{StartedAt: start, FinishedAt: start.Add(time.Minute), Forced: true, Census: []byte(`{"key_errors":0}`)}
	require.NoError(t, c.RecordRun(ctx, run))
	assert.Len(t, run.ID, 36)

	got, err := c.LastRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.True(t, got.Forced)
	assert.Equal(t, `{"key_errors":0}`, string(got.Census))
	assert.True(t, got.FinishedAt.Equal(start.Add(time.Minute)))
}
