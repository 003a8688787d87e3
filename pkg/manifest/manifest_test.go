package manifest_test

import (
	"strings"
	"testing"

	"s3-resources/pkg/manifest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleMetadata = `{
  "title": "  Weather Data \n",
  "license_id": "open-data",
  "num_resources": 2,
  "private": false,
  "notes": null,
  "tags": ["rain", " temperature "],
  "resources": [
    {"name": "Daily Readings", "format": "CSV"},
    {"name": "It's hourly", "format": "JSON"}
  ],
  "extras": {},
  "groups": [],
  "organization": {"display_name": "Met Service", "is_organization": true}
}`

func TestGenerate(t *testing.T) {
	doc, err := manifest.Decode([]byte(sampleMetadata))
	require.NoError(t, err)

	got := string(manifest.Generate("Weather Data", doc))
	want := strings.Join([]string{
		"# Metadata for Weather Data",
		"---",
		"Extras: {}",
		"Groups: []",
		"License Id: 'open-data'",
		"Notes: null",
		"Num Resources: 2",
		"Organization:",
		"  Display Name: 'Met Service'",
		"  Is Organization: true",
		"Private: false",
		"Resources:",
		"  -",
		"    Format: 'CSV'",
		"    Name: 'Daily Readings'",
		"  -",
		"    Format: 'JSON'",
		"    Name: 'It''s hourly'",
		"Tags:",
		"  - 'rain'",
		"  - 'temperature'",
		"Title: 'Weather Data'",
		"",
	}, "\r\n")
	assert.Equal(t, want, got)
}

func TestGenerateIsDeterministic(t *testing.T) {
	doc, err := manifest.Decode([]byte(sampleMetadata))
	require.NoError(t, err)

	first := manifest.Generate("Weather Data", doc)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, manifest.Generate("Weather Data", doc))
	}
}

func TestKeyOrderDoesNotMatter(t *testing.T) {
	a, err := manifest.Decode([]byte(`{"b_key": "1", "a_key": "2", "c": {"y": 1, "x": 2}}`))
	require.NoError(t, err)
	b, err := manifest.Decode([]byte(`{"c": {"x": 2, "y": 1}, "a_key": "2", "b_key": "1"}`))
	require.NoError(t, err)

	assert.Equal(t, manifest.Generate("t", a), manifest.Generate("t", b))
}

func TestLineEndingsAreCRLF(t *testing.T) {
	doc, err := manifest.Decode([]byte(sampleMetadata))
	require.NoError(t, err)

	out := string(manifest.Generate("Weather Data", doc))
	assert.Equal(t, strings.Count(out, "\n"), strings.Count(out, "\r\n"))
	assert.True(t, strings.HasSuffix(out, "\r\n"))
}

func TestPrettifyIsIdempotent(t *testing.T) {
	doc, err := manifest.Decode([]byte(sampleMetadata))
	require.NoError(t, err)

	once := manifest.Prettify(doc)
	twice := manifest.Prettify(once)
	assert.Equal(t, manifest.Render("x", once), manifest.Render("x", twice))
}

func TestPrettifyMergesCollidingKeys(t *testing.T) {
	doc, err := manifest.Decode([]byte(`{"a_b": "first", "A B": "second"}`))
	require.NoError(t, err)

	out := manifest.Prettify(doc)
	require.Equal(t, yaml.MappingNode, out.Kind)
	require.Len(t, out.Content, 2)
	assert.Equal(t, "A B", out.Content[0].Value)
	assert.Equal(t, "second", out.Content[1].Value)
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Last Modified", manifest.PrettyKey("last_modified"))
	assert.Equal(t, "Bar2Baz", manifest.TitleCase("bar2baz"))
	assert.Equal(t, "Url Type", manifest.PrettyKey("URL_type"))
	assert.Equal(t, "", manifest.PrettyKey(""))
}

func TestRenderQuotesAmbiguousKeys(t *testing.T) {
	doc, err := manifest.FromValue(map[string]any{"yes": "v", "123": "n", "ok key": "k"})
	require.NoError(t, err)

	out := string(manifest.Render("t", doc))
	assert.Contains(t, out, "'123': 'n'\r\n")
	assert.Contains(t, out, "ok key: 'k'\r\n")
	assert.Contains(t, out, "'yes': 'v'\r\n")
}

func TestRenderMultilineString(t *testing.T) {
	doc, err := manifest.FromValue(map[string]any{"notes": "line one\nline two"})
	require.NoError(t, err)

	out := manifest.Render("t", doc)
	assert.Contains(t, string(out), "notes: 'line one\r\n\r\n  line two'\r\n")

	// 输出本身是合法 YAML，且能还原出原字符串
	var back map[string]string
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "line one\nline two", back["notes"])
}

func TestRenderMultilineKeepsWhitespace(t *testing.T) {
	cases := map[string]string{
		"indented":     "line1\n  indented\n\tand tabbed",
		"trailing":     "line1   \nline2",
		"blank lines":  "a\n\nb\n\n\nc",
		"blank spaces": "a\n   \nb",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := manifest.FromValue(map[string]any{"notes": value, "list": []string{value}})
			require.NoError(t, err)

			out := manifest.Render("t", doc)
			var back struct {
				Notes string   `yaml:"notes"`
				List  []string `yaml:"list"`
			}
			require.NoError(t, yaml.Unmarshal(out, &back), string(out))
			assert.Equal(t, value, back.Notes)
			assert.Equal(t, []string{value}, back.List)
		})
	}
}

func TestRenderIndentedContinuationUsesLiteralBlock(t *testing.T) {
	doc, err := manifest.FromValue(map[string]any{"notes": "line1\n  indented"})
	require.NoError(t, err)

	out := string(manifest.Render("t", doc))
	assert.Contains(t, out, "notes: |-\r\n  line1\r\n    indented\r\n")
}

func TestRenderScalarAndEmptyDocuments(t *testing.T) {
	assert.Equal(t, "# Metadata for t\r\n--- {}\r\n", string(manifest.Render("t", nil)))

	doc, err := manifest.Decode([]byte(`"just text"`))
	require.NoError(t, err)
	assert.Equal(t, "# Metadata for Multi Line\r\n--- 'just text'\r\n", string(manifest.Render("Multi\nLine", doc)))
}

func TestNestedSequences(t *testing.T) {
	doc, err := manifest.Decode([]byte(`{"matrix": [[1, 2], []]}`))
	require.NoError(t, err)

	want := "# Metadata for t\r\n---\r\nMatrix:\r\n  -\r\n    - 1\r\n    - 2\r\n  - []\r\n"
	assert.Equal(t, want, string(manifest.Generate("t", doc)))
}
