package expander

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/quantmind-br/hippofactory-go/internal/bindle"
	"github.com/quantmind-br/hippofactory-go/internal/domain"
	"github.com/quantmind-br/hippofactory-go/internal/domain/mocks"
	"github.com/quantmind-br/hippofactory-go/internal/manifest"
)

func expand(t *testing.T, base string, f *manifest.HippoFacts) *bindle.Invoice {
	t.Helper()
	inv, err := Expand(context.Background(), f, newTestContext(t, base, nil))
	require.NoError(t, err)
	return inv
}

func TestExpand_ScenarioA_NoFiles(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{"out/fake.wasm": "fake"})

	inv := expand(t, base, facts(local("out/fake.wasm", "/fake")))

	require.Len(t, inv.Group, 1)
	assert.Equal(t, "out/fake.wasm-files", inv.Group[0].Name)
	require.Len(t, inv.Parcel, 1)

	p := inv.Parcel[0]
	assert.Equal(t, "out/fake.wasm", p.Label.Name)
	assert.Equal(t, map[string]string{"route": "/fake", "file": "false"}, p.Label.Feature[FeatureNamespace])
	assert.Nil(t, p.Requires())
	assert.Nil(t, p.MemberOf())
}

func TestExpand_ScenarioB_OneAsset(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"out/fake.wasm": "fake",
		"assets/a.js":   "alert(1)",
	})

	inv := expand(t, base, facts(local("out/fake.wasm", "/fake", "assets/*.js")))

	require.Len(t, inv.Parcel, 2)
	handler := parcelNamed(t, inv, "out/fake.wasm")
	asset := parcelNamed(t, inv, "assets/a.js")

	assert.Equal(t, []string{"out/fake.wasm-files"}, handler.Requires())
	assert.Equal(t, "true", asset.Label.Feature[FeatureNamespace]["file"])
	assert.Equal(t, []string{"out/fake.wasm-files"}, asset.MemberOf())
	assert.Equal(t, sha("alert(1)"), asset.Label.SHA256)
}

func TestExpand_ScenarioC_ExternalWithoutRegistry(t *testing.T) {
	inv, err := Expand(context.Background(),
		facts(external(t, "pkg/1.0.0:mod.wasm", "/")),
		newTestContext(t, t.TempDir(), nil))

	assert.Nil(t, inv)
	assert.ErrorIs(t, err, domain.ErrNoRegistry)
	assert.Contains(t, err.Error(), "no registry configured")
}

func TestExpand_ScenarioD_ModuleIsAlsoAsset(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"out/fake.wasm":   "fake",
		"out/other.wasm":  "other",
		"scripts/real.js": "real",
	})

	inv := expand(t, base, facts(
		local("out/fake.wasm", "/fake", "scripts/*.js"),
		local("out/other.wasm", "/other", "out/*.wasm"),
	))

	fake := parcelNamed(t, inv, "out/fake.wasm")
	assert.Contains(t, fake.MemberOf(), "out/other.wasm-files")
	assert.Contains(t, fake.Requires(), "out/fake.wasm-files")
	assert.Equal(t, "/fake", fake.Label.Feature[FeatureNamespace]["route"])
	assert.Equal(t, "false", fake.Label.Feature[FeatureNamespace]["file"])

	other := parcelNamed(t, inv, "out/other.wasm")
	assert.Equal(t, []string{"out/other.wasm-files"}, other.MemberOf())
	assert.Equal(t, []string{"out/other.wasm-files"}, other.Requires())

	assert.Len(t, inv.Parcel, 3)
}

func TestExpand_InvoiceFields(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{"out/fake.wasm": "fake"})

	f := facts(local("out/fake.wasm", "/fake"))
	f.Bindle.Description = "Forecasts"
	f.Bindle.Authors = []string{"Joan Q Programmer"}
	f.Annotations = map[string]string{"team": "infra"}

	c, err := NewContext(ContextOptions{
		BaseDir:    base,
		Versioning: Dev,
		Clock:      fixedClock,
		LookupEnv:  func(k string) (string, bool) { return "joan", k == "USER" },
	})
	require.NoError(t, err)

	inv, err := Expand(context.Background(), f, c)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", inv.BindleVersion)
	assert.Equal(t, "weather", inv.Bindle.Name)
	assert.Equal(t, "1.2.3-joan-2021.03.04.05.06.07.890", inv.Bindle.Version)
	assert.Equal(t, "weather/1.2.3-joan-2021.03.04.05.06.07.890", inv.ID())
	assert.Equal(t, "Forecasts", inv.Bindle.Description)
	assert.Equal(t, []string{"Joan Q Programmer"}, inv.Bindle.Authors)
	assert.Equal(t, map[string]string{"team": "infra"}, inv.Annotations)
	assert.Nil(t, inv.Yanked)
	assert.Nil(t, inv.Signature)
}

// app1 mirrors a small app with two handlers sharing an asset
func TestExpand_SharedAssets(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"out/fake.wasm":       "fake",
		"out/lies.wasm":       "lies",
		"scripts/real.js":     "real",
		"scripts/ignore.json": "{}",
	})

	inv := expand(t, base, facts(
		local("out/fake.wasm", "/fake", "scripts/*.js"),
		local("out/lies.wasm", "/lies", "scripts/*"),
	))

	assert.Equal(t, "weather", inv.Bindle.Name)
	assert.Equal(t, "1.2.3", inv.Bindle.Version)
	require.Len(t, inv.Group, 2)
	assert.Equal(t, "out/fake.wasm-files", inv.Group[0].Name)
	assert.Equal(t, "out/lies.wasm-files", inv.Group[1].Name)

	assert.Equal(t, []string{"out/lies.wasm-files"}, parcelNamed(t, inv, "scripts/ignore.json").MemberOf())
	assert.Equal(t, []string{"out/fake.wasm-files", "out/lies.wasm-files"}, parcelNamed(t, inv, "scripts/real.js").MemberOf())
	assert.Equal(t, "true", parcelNamed(t, inv, "scripts/real.js").Label.Feature[FeatureNamespace]["file"])

	lies := parcelNamed(t, inv, "out/lies.wasm")
	assert.Nil(t, lies.MemberOf())
	assert.Equal(t, []string{"out/lies.wasm-files"}, lies.Requires())

	var names []string
	for _, p := range inv.Parcel {
		names = append(names, p.Label.Name)
	}
	assert.Equal(t, []string{"out/fake.wasm", "out/lies.wasm", "scripts/real.js", "scripts/ignore.json"}, names)
}

// app2 collects the ways a handler can end up with no assets
func TestExpand_HandlersWithoutAssets(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"wasm/no-assets.wasm":             "1",
		"wasm/empty-assets.wasm":          "2",
		"wasm/no-match.wasm":              "3",
		"wasm/no-directory.wasm":          "4",
		"wasm/specific-file-missing.wasm": "5",
		"assets/present.txt":              "present",
	})

	emptyAssets := local("wasm/empty-assets.wasm", "/empty")
	emptyAssets.Files = []string{}

	inv := expand(t, base, facts(
		local("wasm/no-assets.wasm", "/none"),
		emptyAssets,
		local("wasm/no-match.wasm", "/nomatch", "assets/*.nope"),
		local("wasm/no-directory.wasm", "/nodir", "missing-dir/*.txt"),
		local("wasm/specific-file-missing.wasm", "/missing", "assets/missing.txt"),
	))

	assert.Len(t, inv.Parcel, 5)
	for _, p := range inv.Parcel {
		assert.Nil(t, p.MemberOf(), p.Label.Name)
		assert.Nil(t, p.Requires(), p.Label.Name)
	}
}

func TestExpand_LocalModuleMissing(t *testing.T) {
	_, err := Expand(context.Background(),
		facts(local("out/missing.wasm", "/gone")),
		newTestContext(t, t.TempDir(), nil))

	assert.ErrorIs(t, err, domain.ErrOpen)
	assert.Contains(t, err.Error(), "/gone")
}

func TestExpand_BadPatternAborts(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{"a.wasm": "a"})

	inv, err := Expand(context.Background(),
		facts(local("a.wasm", "/", "[")),
		newTestContext(t, base, nil))

	assert.Nil(t, inv)
	assert.ErrorIs(t, err, domain.ErrGlobMatch)
}

func TestExpand_WithExternalModule(t *testing.T) {
	base := t.TempDir()
	writeTree(t, base, map[string]string{
		"out/app.wasm":    "app",
		"static/site.css": "body {}",
		"static/logo.svg": "<svg/>",
	})

	ctrl := gomock.NewController(t)
	registry := mocks.NewMockRegistryClient(ctrl)
	registry.EXPECT().
		FetchInvoice(gomock.Any(), fileserverID(t), true).
		Return(fileserverInvoice(remoteParcel("fileserver.gr.wasm", "e1706ab0", "application/wasm", 3324)), nil).
		Times(1)

	inv, err := Expand(context.Background(), facts(
		local("out/app.wasm", "/"),
		external(t, "deislabs/fileserver/1.0.3:fileserver.gr.wasm", "/static/...", "static/*"),
	), newTestContext(t, base, registry))
	require.NoError(t, err)

	assert.Equal(t, []string{"out/app.wasm-files", "fileserver.gr.wasm-files"},
		[]string{inv.Group[0].Name, inv.Group[1].Name})

	fs := parcelNamed(t, inv, "fileserver.gr.wasm")
	assert.Equal(t, "e1706ab0", fs.Label.SHA256)
	assert.Equal(t, []string{"fileserver.gr.wasm-files"}, fs.Requires())

	for _, name := range []string{"static/site.css", "static/logo.svg"} {
		assert.Equal(t, []string{"fileserver.gr.wasm-files"}, parcelNamed(t, inv, name).MemberOf())
	}
	assert.Nil(t, parcelNamed(t, inv, "out/app.wasm").Requires())
}
