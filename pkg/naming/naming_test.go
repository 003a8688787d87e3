package naming_test

import (
	"regexp"
	"testing"
	"time"

	"s3-resources/pkg/naming"
	"s3-resources/pkg/protocol"

	"github.com/stretchr/testify/assert"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]*$`)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Daily Readings":          "daily-readings",
		"  Weather / Data  ":      "weather-data",
		"snake_case_name":         "snake-case-name",
		"Ünïcödé Tëxt":            "unicode-text",
		"a:b\\c?d#e":              "a-b-c-d-e",
		"---already-a-slug---":    "already-a-slug",
		"":                        "",
		"Population 2020 (Final)": "population-2020-final",
	}
	for in, want := range cases {
		assert.Equal(t, want, naming.Slugify(in), "input %q", in)
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{
		"Daily Readings", "UPPER lower", "tabs\tand\nnewlines", "日本語 data",
		"dots.and.more.dots", "100% pure", "x__y--z", "  ", "Ärger & Öl",
	}
	for _, in := range inputs {
		once := naming.Slugify(in)
		assert.Equal(t, once, naming.Slugify(once), "input %q", in)
		assert.Regexp(t, slugPattern, once)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".csv", naming.Extension(&protocol.Resource{URL: "https://host/a/b/file.CSV"}))
	assert.Equal(t, ".csv", naming.Extension(&protocol.Resource{URL: "https://host/a/b/file.csv?x=1"}))
	assert.Equal(t, ".json", naming.Extension(&protocol.Resource{Format: "JSON"}))
	assert.Equal(t, ".xlsx", naming.Extension(&protocol.Resource{URL: "report.xlsx", Format: "Excel"}))
	// 无法推断时不带扩展名
	assert.Equal(t, "", naming.Extension(&protocol.Resource{URL: "https://host/endpoint", Format: "Esri REST"}))
	assert.Equal(t, "", naming.Extension(&protocol.Resource{}))
}

func TestCanonicalKey(t *testing.T) {
	res := &protocol.Resource{Name: "Daily Readings", Format: "csv", URLType: protocol.LocationLocal}
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	key := naming.CanonicalKey("weather-data", res, false, now)
	assert.Equal(t, "weather-data/daily-readings.csv", key)
	assert.Equal(t, key, naming.CanonicalKey("weather-data", res, false, now.Add(time.Hour)))

	// 无 last_modified / created 时使用 now
	assert.Equal(t, "weather-data/daily-readings-2024-03-01T08-00-00Z.csv", naming.CanonicalKey("weather-data", res, true, now))

	modified := time.Date(2023, 12, 31, 23, 59, 58, 0, time.FixedZone("SGT", 8*3600))
	created := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	res.Created = &created
	assert.Equal(t, "weather-data/daily-readings-2020-01-01T00-00-00Z.csv", naming.CanonicalKey("weather-data", res, true, now))
	res.LastModified = &modified
	assert.Equal(t, "weather-data/daily-readings-2023-12-31T15-59-58Z.csv", naming.CanonicalKey("weather-data", res, true, now))
}

func TestResourceSlugFallsBackToID(t *testing.T) {
	res := &protocol.Resource{ID: "9F2A-11", Name: "???"}
	assert.Equal(t, "9f2a-11", naming.ResourceSlug(res))
}

func TestArchivalKey(t *testing.T) {
	t1 := naming.Stamp(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	t2 := naming.Stamp(time.Date(2024, 3, 1, 8, 0, 1, 0, time.UTC))

	k1 := naming.ArchivalKey("weather-data/daily-readings.csv", t1)
	k2 := naming.ArchivalKey("weather-data/daily-readings.csv", t2)
	assert.Equal(t, "archive/weather-data/daily-readings-2024-03-01T08-00-00Z.csv", k1)
	assert.NotEqual(t, k1, k2)
	assert.NotContains(t, k1, ":")

	assert.Equal(t, "archive/weather-data/weather-data-2024-03-01T08-00-00Z.zip", naming.ArchivalKey(naming.PackageZipKey("weather-data"), t1))
	assert.Equal(t, "archive/pkg/noext-2024-03-01T08-00-00Z", naming.ArchivalKey("pkg/noext", t1))
}

func TestZipAndMemberNames(t *testing.T) {
	res := &protocol.Resource{Name: "Daily Readings", URL: "daily.csv"}
	assert.Equal(t, "weather-data/daily-readings.zip", naming.ResourceZipKey("weather-data", res))
	assert.Equal(t, "weather-data/weather-data.zip", naming.PackageZipKey("weather-data"))
	assert.Equal(t, "metadata-weather-data.txt", naming.ManifestName("weather-data"))
	assert.Equal(t, "daily-readings.csv", naming.MemberName(res))
}
